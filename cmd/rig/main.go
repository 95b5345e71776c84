package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hayabusaracing/rig/pkg/config"
	"github.com/hayabusaracing/rig/pkg/thrust"
)

var (
	logLevel   = "info"
	configPath = "rig.yaml"

	// conf is loaded before any subcommand runs.
	conf config.Config
)

var (
	gTether       = "Tether:"
	gThrust       = "Thrust:"
	gSimulation   = "Simulation:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gTether,
		gThrust,
		gSimulation,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func loadConfig() error {
	f, err := config.NewFile(configPath)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	logrus.WithFields(f.LogrusFields()).Debug("config loaded")
	conf = f
	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, thrust.ErrInputNotFound) {
		fmt.Fprintln(os.Stderr, "\nError: thrust input file not found")
		fmt.Fprintln(os.Stderr, "  - Run rig from the directory holding thrust.csv")
		fmt.Fprintln(os.Stderr, "  - Or point to the file with '--input' or 'thrustInput' in the config file")
	} else if errors.Is(err, config.ErrInvalidConfig) {
		fmt.Fprintf(os.Stderr, "\nCheck the values in %s, or remove it to use the defaults.\n", configPath)
	}
}

func main() {
	cmd := NewCommand()
	// Reports go to stdout, logs to stderr.
	cmd.SetOut(os.Stdout)
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rig",
		Short: "rig analyzes tether tension and thrust measurements from the test rig",
		Long: `rig analyzes tether tension and thrust measurements from the test rig.

It models the guide tether tension, fits the model to measured samples,
checks the repeatability of thrust test firings and simulates a run of the car.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			return loadConfig()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path (.json, .yaml or .yml)")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewTensionCommand(),
		NewTetherFitCommand(),
		NewThrustCommand(),
		NewRaceCommand(),
		NewServeCommand(),
		NewConfigCommand(),
		NewVersionCommand(),
	)

	return cmd
}

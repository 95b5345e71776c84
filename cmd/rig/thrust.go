package main

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/chart"
	"github.com/hayabusaracing/rig/pkg/metrics"
	"github.com/hayabusaracing/rig/pkg/thrust"
)

func NewThrustCommand() *cobra.Command {
	var (
		input       string
		jsonOutput  string
		plotOutput  string
		description string
		dpi         int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:     "thrust",
		Short:   "Analyze the thrust decay of repeated test firings",
		GroupID: gThrust,
		Long: `Analyze the thrust decay of repeated test firings.

The input CSV has five unlabeled columns, four attempts and their average,
with one row every 10 ms. rig reports per-attempt statistics and how
consistent the attempts are, writes the average trace with its running
impulse as JSON, and plots the attempts.

Nothing is written unless the whole analysis succeeds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("input") {
				input = conf.ThrustInput()
			}
			if !cmd.Flags().Changed("json-output") {
				jsonOutput = conf.ThrustJSONOutput()
			}
			if !cmd.Flags().Changed("output") {
				plotOutput = conf.ThrustPlotOutput()
			}
			if !cmd.Flags().Changed("dpi") {
				dpi = conf.DPI()
			}

			logrus.Debugf("loading thrust data from %s", input)
			t, err := thrust.LoadCSV(input)
			if err != nil {
				return err
			}

			a, err := thrust.Analyze(t)
			if err != nil {
				return err
			}
			if a.Degenerate() {
				logrus.Warn("some statistics are undefined: the attempts are constant or average to zero")
			}
			metrics.ObserveVerdict(string(a.Validity.Verdict))

			var doc bytes.Buffer
			if err := thrust.NewImpulseDocument(t, description).Encode(&doc); err != nil {
				return pkgerrors.Wrap(err, "failed to encode impulse data")
			}
			var png bytes.Buffer
			if err := chart.ThrustDecay(&png, t, thrust.RowSpread(t), chart.Options{DPI: dpi}); err != nil {
				return pkgerrors.Wrap(err, "failed to render thrust chart")
			}

			if asJSON {
				if a.Degenerate() {
					return pkgerrors.New("cannot encode undefined statistics as JSON")
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(a); err != nil {
					return err
				}
			} else {
				printDecaySummary(cmd, a.Summary, a.Attempts)
				printValidityReport(cmd, a)
			}

			if err := writeFile(jsonOutput, &doc); err != nil {
				return err
			}
			logrus.Infof("JSON data saved as %s", jsonOutput)
			if err := writeFile(plotOutput, &png); err != nil {
				return err
			}
			logrus.Infof("plot saved as %s", plotOutput)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "thrust.csv", "thrust CSV file")
	f.StringVar(&jsonOutput, "json-output", "thrust_average.json", "output JSON file of the average trace")
	f.StringVarP(&plotOutput, "output", "o", "thrust_decay_analysis.png", "output PNG file")
	f.StringVar(&description, "description", thrust.DefaultDescription, "description stored in the JSON output")
	f.IntVar(&dpi, "dpi", 300, "resolution of the PNG")
	f.BoolVar(&asJSON, "json", false, "print the analysis as JSON instead of the report")

	return cmd
}

package main

import (
	"bytes"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/chart"
	"github.com/hayabusaracing/rig/pkg/dynamics"
)

func NewRaceCommand() *cobra.Command {
	var (
		output string
		dpi    int
	)

	cmd := &cobra.Command{
		Use:     "race",
		Short:   "Simulate a run of the tethered car",
		GroupID: gSimulation,
		Long: `Simulate a run of the tethered car.

The car accelerates under constant thrust against quadratic drag until the
cutoff, after which the thrust decays. Lift, bearing friction, tether pull,
nozzle misalignment, wheel inertia and propellant burn-off are read from
raceLosses in the config file. Velocity is integrated with RK4 (or
Euler), position with the trapezoidal rule, and the first time the car
covers the finish distance is reported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := conf.RaceParams()
			distance := conf.FinishDistance()
			for name, dst := range map[string]*float64{
				"mass":            &p.Mass,
				"drag":            &p.Drag,
				"thrust":          &p.Thrust,
				"distance":        &distance,
				"tether-pull":     &p.Losses.Tether,
				"propellant-rate": &p.Losses.PropellantPerImpulse,
			} {
				if err := overrideFloat(cmd, name, dst); err != nil {
					return err
				}
			}
			if err := overrideInt(cmd, "steps-per-ms", &p.StepsPerMs); err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("cutoff") {
				p.Cutoff, _ = f.GetDuration("cutoff")
			}
			if f.Changed("duration") {
				p.Duration, _ = f.GetDuration("duration")
			}
			if f.Changed("method") {
				m, _ := f.GetString("method")
				p.Method = dynamics.Method(m)
			}

			logrus.WithFields(logrus.Fields{
				"mass":     p.Mass,
				"drag":     p.Drag,
				"thrust":   p.Thrust,
				"cutoff":   p.Cutoff,
				"duration": p.Duration,
				"method":   p.Method,
				"losses":   p.Losses,
			}).Debug("simulating run")
			run, err := dynamics.Simulate(p)
			if err != nil {
				return err
			}

			cmd.Println(bold("Race simulation:"))
			cmd.Printf("  Top speed: %s (terminal %.2f m/s)\n", bold("%.3f m/s", run.TopSpeed()), p.TerminalVelocity())
			cmd.Printf("  Distance covered: %s\n", bold("%.3f m", run.Position[len(run.Position)-1]))
			cmd.Printf("  Impulse delivered: %s\n", bold("%.3f N·s", p.Impulse(p.Duration)))
			if t, ok := run.FinishTime(distance); ok {
				cmd.Printf("  Finish (%g m): %s\n", distance, bold("%.3f s", t.Seconds()))
			} else {
				cmd.Printf("  Finish (%g m): %s within %v\n", distance, bool2Text(false)+" not reached", p.Duration)
			}

			var b bytes.Buffer
			if err := chart.Race(&b, run, distance, chart.Options{DPI: dpi}); err != nil {
				return pkgerrors.Wrap(err, "failed to render race chart")
			}
			if err := writeFile(output, &b); err != nil {
				return err
			}
			logrus.Infof("plot saved as %s", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "race.png", "output PNG file")
	f.IntVar(&dpi, "dpi", chart.DefaultDPI, "resolution of the PNG")
	f.Float64("mass", 0, "car mass in kg")
	f.Float64("drag", 0, "quadratic drag coefficient in g/m")
	f.Float64("thrust", 0, "thrust in N before the cutoff")
	f.Float64("distance", 0, "finish distance in m")
	f.Float64("tether-pull", 0, "constant pull of the guide tether in N")
	f.Float64("propellant-rate", 0, "propellant mass burnt per impulse in kg/(N·s)")
	f.Duration("cutoff", 0, "time at which full thrust ends, 0 for constant thrust")
	f.Duration("duration", 3*time.Second, "simulated time")
	f.Int("steps-per-ms", 0, "integration steps per millisecond")
	f.String("method", string(dynamics.RK4), "velocity integrator (rk4, euler)")

	return cmd
}

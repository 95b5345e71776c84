package main

import (
	"bytes"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/chart"
	"github.com/hayabusaracing/rig/pkg/metrics"
	"github.com/hayabusaracing/rig/pkg/tether"
)

const (
	// fitMargin keeps fitted curves away from the anchors, where the model
	// is steepest.
	fitMargin      = 1.0
	fitCurvePoints = 100
)

func NewTetherFitCommand() *cobra.Command {
	var (
		output   string
		dataPath string
		adjusted bool
		dpi      int
	)

	cmd := &cobra.Command{
		Use:     "tether-fit",
		Short:   "Fit the tension model to measured samples",
		GroupID: gTether,
		Long: `Fit the tension model to measured samples at each sag height.

Without --data the samples recorded on the rig at 10 to 50 mm are used.
A height whose fit does not converge is drawn as straight segments between
its samples and the other heights are still fitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasets, err := readDatasets(dataPath, adjusted)
			if err != nil {
				return err
			}
			reach := conf.Geometry().Reach()
			opts := tether.FitOptions{MaxEvaluations: conf.FitMaxEvaluations()}

			cmd.Println(bold("Tether model fit:"))
			series := make([]chart.FitSeries, 0, len(datasets))
			for _, d := range datasets {
				s := chart.FitSeries{NominalHeightMm: d.NominalHeightMm, Samples: d.Samples}

				m, err := tether.Fit(d.Samples, reach, tether.InitialGuess(d.NominalHeightMm), opts)
				metrics.ObserveFit(err == nil)
				if err != nil {
					logrus.WithField("heightMm", d.NominalHeightMm).Warnf("fit failed, drawing raw samples: %v", err)
					cmd.Printf("  h=%gmm: %s\n", d.NominalHeightMm, bool2Text(false)+" no fit")
					series = append(series, s)
					continue
				}

				s.Curve = m.Curve(fitMargin, reach-fitMargin, fitCurvePoints)
				series = append(series, s)
				cmd.Printf("  h=%gmm: %s k=%s h_eff=%s SSE=%.2e (%d evaluations)\n",
					d.NominalHeightMm, bool2Text(true), bold("%.4f", m.Scale), bold("%.4f m", m.EffectiveHeight), m.SSE, m.Evaluations)
			}

			var b bytes.Buffer
			if err := chart.TetherFit(&b, series, chart.Options{DPI: dpi}); err != nil {
				return pkgerrors.Wrap(err, "failed to render fit chart")
			}
			if err := writeFile(output, &b); err != nil {
				return err
			}
			logrus.Infof("plot saved as %s", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "tether_fit.png", "output PNG file")
	f.StringVar(&dataPath, "data", "", "CSV of height_mm,position_m,tension_N samples")
	f.BoolVar(&adjusted, "adjusted", false, "use the hand-adjusted far-end values of earlier charts")
	f.IntVar(&dpi, "dpi", chart.DefaultDPI, "resolution of the PNG")

	return cmd
}

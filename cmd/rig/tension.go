package main

import (
	"bytes"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/chart"
	"github.com/hayabusaracing/rig/pkg/tether"
)

func NewTensionCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "tension",
		Short:   "Plot the closed-form tether tension along the track",
		GroupID: gTether,
		Long: `Plot the closed-form tether tension along the track.

The tension with the car at position x is

  T(x) = k·h·(1/√(x²+h²) + 1/√((D−x−L)²+h²))

where D is the total span, L the tether length and h the sag height, all in
meters. The geometry defaults to the config file and can be overridden with
flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := conf.Geometry()
			k := conf.TensionScale()
			n := conf.CurvePoints()
			yMax := conf.TensionYMax()
			dpi := chart.DefaultDPI
			for name, dst := range map[string]*float64{
				"span":   &g.TotalSpan,
				"length": &g.TetherLength,
				"sag":    &g.SagHeight,
				"k":      &k,
				"y-max":  &yMax,
			} {
				if err := overrideFloat(cmd, name, dst); err != nil {
					return err
				}
			}
			if err := overrideInt(cmd, "points", &n); err != nil {
				return err
			}
			if err := overrideInt(cmd, "dpi", &dpi); err != nil {
				return err
			}

			pts, err := tether.Curve(g, k, n)
			if err != nil {
				return err
			}
			s := tether.Summarize(pts)

			cmd.Println(bold("Tether tension:"))
			cmd.Printf("  Geometry: span %s, tether %s, sag %s\n",
				bold("%g m", g.TotalSpan), bold("%g m", g.TetherLength), bold("%g m", g.SagHeight))
			cmd.Printf("  Scale k: %s\n", bold("%g", k))
			cmd.Printf("  At start (x=%.2f m): %s\n", pts[0].X, bold("%.4f N", pts[0].Tension))
			cmd.Printf("  At midpoint (x=%.2f m): %s\n", s.Midpoint.X, bold("%.4f N", s.Midpoint.Tension))
			cmd.Printf("  At end (x=%.2f m): %s\n", pts[len(pts)-1].X, bold("%.4f N", pts[len(pts)-1].Tension))
			cmd.Printf("  Minimum: %s at x=%.2f m\n", bold("%.4f N", s.Min.Tension), s.Min.X)
			if s.Max.Tension > yMax && yMax > 0 {
				logrus.Infof("peak tension %.3f N is clipped by the %.3f N axis limit", s.Max.Tension, yMax)
			}

			var b bytes.Buffer
			if err := chart.TensionCurve(&b, pts, yMax, chart.Options{DPI: dpi}); err != nil {
				return pkgerrors.Wrap(err, "failed to render tension chart")
			}
			if err := writeFile(output, &b); err != nil {
				return err
			}
			logrus.Infof("plot saved as %s", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "tether_tension.png", "output PNG file")
	f.Float64("span", 0, "total span D between the anchors in meters")
	f.Float64("length", 0, "tether length L in meters")
	f.Float64("sag", 0, "sag height h in meters")
	f.Float64("k", 0, "tension scale")
	f.Float64("y-max", 0, "upper limit of the tension axis in newtons, 0 to autoscale")
	f.Int("points", 0, "number of positions to sample")
	f.Int("dpi", chart.DefaultDPI, "resolution of the PNG")

	return cmd
}

// readDatasets returns the tension datasets to fit: the file at path when
// set, else the recorded samples.
func readDatasets(path string, adjusted bool) ([]tether.Dataset, error) {
	if path == "" {
		if adjusted {
			logrus.Warn("using hand-adjusted far-end tensions; these values are not measurements")
			return tether.AdjustedDatasets(), nil
		}
		return tether.MeasuredDatasets(), nil
	}
	if adjusted {
		logrus.Warn("--adjusted has no effect with --data")
	}

	fp, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open file %s", path)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", path)
		}
	}(fp)

	ds, err := tether.LoadDatasetsCSV(fp)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse %s", path)
	}
	return ds, nil
}

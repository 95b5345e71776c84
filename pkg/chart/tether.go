package chart

import (
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hayabusaracing/rig/pkg/tether"
)

// TensionCurve plots a sampled closed-form tension curve. yMax clamps the
// y axis when positive.
func TensionCurve(w io.Writer, pts []tether.Point, yMax float64, o Options) error {
	if len(pts) < 2 {
		return pkgerrors.Errorf("tension curve needs at least 2 points, got %d", len(pts))
	}
	o = o.withDefaults(8*vg.Inch, 5*vg.Inch)

	p := newPlot("Tether Tension vs Position", "Position x (m)", "Tension T (N)")
	line := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		line[i].X, line[i].Y = pt.X, pt.Tension
	}
	if err := addLine(p, "", line, blue, vg.Points(1.5), nil); err != nil {
		return err
	}
	if yMax > 0 {
		p.Y.Min, p.Y.Max = 0, yMax
	}

	return render(w, [][]*plot.Plot{{p}}, o)
}

// FitSeries is one sag height on the fit chart. Curve is nil when the fit
// failed; the raw samples are then joined by straight segments.
type FitSeries struct {
	NominalHeightMm float64
	Samples         []tether.Sample
	Curve           []tether.Point
}

// TetherFit plots the measured samples of every height with their fitted
// curves.
func TetherFit(w io.Writer, series []FitSeries, o Options) error {
	if len(series) == 0 {
		return pkgerrors.New("no datasets to plot")
	}
	o = o.withDefaults(8*vg.Inch, 6*vg.Inch)

	p := newPlot("Measured Tension with Physical Model Fit", "Position x (m)", "Tension T (N)")
	for i, s := range series {
		c := plotutil.Color(i)
		label := fmt.Sprintf("h=%gmm", s.NominalHeightMm)

		raw := make(plotter.XYs, 0, len(s.Samples))
		for _, sm := range s.Samples {
			if finite(sm.Position) && finite(sm.Tension) {
				raw = append(raw, plotter.XY{X: sm.Position, Y: sm.Tension})
			}
		}
		if len(raw) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(raw)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to build scatter for %s", label)
		}
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(label+" (data)", sc)

		if s.Curve == nil {
			if err := addLine(p, label+" (no fit)", raw, c, vg.Points(1), dashed); err != nil {
				return err
			}
			continue
		}
		fit := make(plotter.XYs, len(s.Curve))
		for j, pt := range s.Curve {
			fit[j].X, fit[j].Y = pt.X, pt.Tension
		}
		if err := addLine(p, label+" (fit)", fit, c, vg.Points(1.5), nil); err != nil {
			return err
		}
	}

	return render(w, [][]*plot.Plot{{p}}, o)
}

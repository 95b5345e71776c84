package chart

import (
	"io"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/hayabusaracing/rig/pkg/thrust"
)

// ThrustDecay draws all attempts with the dashed average on the left, and
// the average with a ±spread band on the right. spread is the per-row
// standard deviation across attempts.
func ThrustDecay(w io.Writer, t *thrust.Table, spread []float64, o Options) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(spread) != t.Len() {
		return pkgerrors.Errorf("spread has %d rows, table has %d", len(spread), t.Len())
	}
	if err := finiteAll(spread); err != nil {
		return pkgerrors.Wrap(err, "invalid spread")
	}
	o = o.withDefaults(15*vg.Inch, 6*vg.Inch)
	ts := t.Times()

	all := newPlot("Thrust vs Time - All Attempts", "Time (seconds)", "Thrust (Newtons)")
	for i, col := range t.Attempts {
		if err := addLine(all, thrust.AttemptName(i), xys(ts, col), plotutil.Color(i), vg.Points(2), nil); err != nil {
			return err
		}
	}
	if err := addLine(all, "Average", xys(ts, t.Average), black, vg.Points(3), dashed); err != nil {
		return err
	}

	avg := newPlot("Average Thrust with Uncertainty", "Time (seconds)", "Thrust (Newtons)")
	n := t.Len()
	outline := make(plotter.XYs, 0, 2*n)
	for i := 0; i < n; i++ {
		outline = append(outline, plotter.XY{X: ts[i], Y: t.Average[i] + spread[i]})
	}
	for i := n - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: ts[i], Y: t.Average[i] - spread[i]})
	}
	poly, err := plotter.NewPolygon(outline)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build uncertainty band")
	}
	poly.Color = band
	poly.LineStyle.Width = 0
	avg.Add(poly)
	avg.Legend.Add("±1σ", poly)
	if err := addLine(avg, "Average Thrust", xys(ts, t.Average), red, vg.Points(3), nil); err != nil {
		return err
	}

	return render(w, [][]*plot.Plot{{all, avg}}, o)
}

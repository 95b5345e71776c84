package chart

import (
	"io"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hayabusaracing/rig/pkg/dynamics"
)

// Race stacks the position and velocity traces of a simulated run. A
// horizontal line marks the finish distance when it is positive.
func Race(w io.Writer, run *dynamics.Run, finish float64, o Options) error {
	if run == nil || len(run.TimeMs) < 2 {
		return pkgerrors.New("nothing to plot")
	}
	o = o.withDefaults(8*vg.Inch, 8*vg.Inch)

	pos := newPlot("Position", "Time (ms)", "x (m)")
	if err := addLine(pos, "", xys(run.TimeMs, run.Position), blue, vg.Points(1.5), nil); err != nil {
		return err
	}
	if finish > 0 {
		f := plotter.NewFunction(func(float64) float64 { return finish })
		f.Color = red
		f.Dashes = dashed
		pos.Add(f)
		pos.Legend.Add("finish", f)
	}

	vel := newPlot("Velocity", "Time (ms)", "v (m/s)")
	if err := addLine(vel, "", xys(run.TimeMs, run.Velocity), red, vg.Points(1.5), nil); err != nil {
		return err
	}

	return render(w, [][]*plot.Plot{{pos}, {vel}}, o)
}

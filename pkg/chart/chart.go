// Package chart renders the PNG figures of the rig commands with gonum/plot.
package chart

import (
	"image/color"
	"io"
	"math"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// DefaultDPI is used when Options.DPI is not set.
	DefaultDPI = 150
)

// Options sets the physical size of a figure.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func (o Options) withDefaults(w, h vg.Length) Options {
	if o.Width <= 0 {
		o.Width = w
	}
	if o.Height <= 0 {
		o.Height = h
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	return o
}

var (
	dashed = []vg.Length{vg.Points(6), vg.Points(3)}
	black  = color.RGBA{A: 255}
	blue   = color.RGBA{B: 200, A: 255}
	red    = color.RGBA{R: 220, A: 255}
	band   = color.RGBA{R: 120, G: 120, B: 255, A: 80}
)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Points(8)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color, width vg.Length, dashes []vg.Length) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to build line %q", label)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = width
	l.LineStyle.Dashes = dashes
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return nil
}

// render lays plots out as a grid on one canvas and writes it as PNG.
func render(w io.Writer, rows [][]*plot.Plot, o Options) error {
	c := vgimg.NewWith(
		vgimg.UseWH(o.Width, o.Height),
		vgimg.UseDPI(o.DPI),
	)
	dc := draw.New(c)

	if len(rows) == 1 && len(rows[0]) == 1 {
		rows[0][0].Draw(dc)
	} else {
		t := draw.Tiles{
			Rows: len(rows),
			Cols: len(rows[0]),
			PadX: vg.Millimeter * 4,
			PadY: vg.Millimeter * 4,
		}
		canvases := plot.Align(rows, t, dc)
		for i := range rows {
			for j := range rows[i] {
				if rows[i][j] != nil {
					rows[i][j].Draw(canvases[i][j])
				}
			}
		}
	}

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return pkgerrors.Wrap(err, "failed to write png")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteAll(ys []float64) error {
	for i, y := range ys {
		if !finite(y) {
			return pkgerrors.Errorf("non-finite value %v at index %d", y, i)
		}
	}
	return nil
}

package chart

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/hayabusaracing/rig/pkg/dynamics"
	"github.com/hayabusaracing/rig/pkg/tether"
	"github.com/hayabusaracing/rig/pkg/thrust"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// small keeps rendering cheap in tests.
var small = Options{Width: 200, Height: 150, DPI: 72}

func assertPNG(t *testing.T, b *bytes.Buffer) {
	t.Helper()
	if !bytes.HasPrefix(b.Bytes(), pngSignature) {
		t.Fatalf("output is not a PNG (%d bytes)", b.Len())
	}
}

func TestTensionCurve(t *testing.T) {
	pts, err := tether.Curve(tether.DefaultGeometry, tether.DefaultScale, 50)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := TensionCurve(&b, pts, 0.1, small); err != nil {
		t.Fatalf("TensionCurve() error = %v", err)
	}
	assertPNG(t, &b)

	if err := TensionCurve(&b, pts[:1], 0.1, small); err == nil {
		t.Errorf("expected error for a single point")
	}
}

func TestTetherFit(t *testing.T) {
	ds := tether.MeasuredDatasets()
	series := []FitSeries{
		{
			NominalHeightMm: ds[0].NominalHeightMm,
			Samples:         ds[0].Samples,
			Curve:           []tether.Point{{X: 1, Tension: 0.08}, {X: 24, Tension: 0.05}},
		},
		// Failed fit, drawn as a polyline.
		{NominalHeightMm: ds[1].NominalHeightMm, Samples: ds[1].Samples},
	}
	var b bytes.Buffer
	if err := TetherFit(&b, series, small); err != nil {
		t.Fatalf("TetherFit() error = %v", err)
	}
	assertPNG(t, &b)

	if err := TetherFit(&b, nil, small); err == nil {
		t.Errorf("expected error for no datasets")
	}

	// Non-finite samples of a failed fit are left out of the polyline.
	b.Reset()
	series = append(series,
		FitSeries{NominalHeightMm: 20, Samples: []tether.Sample{{Position: 5, Tension: 0.05}, {Position: 10, Tension: math.NaN()}, {Position: 20, Tension: 0.06}}},
		FitSeries{NominalHeightMm: 30, Samples: []tether.Sample{{Position: 5, Tension: math.Inf(1)}}},
	)
	if err := TetherFit(&b, series, small); err != nil {
		t.Fatalf("TetherFit() with non-finite samples error = %v", err)
	}
	assertPNG(t, &b)
}

func TestThrustDecay(t *testing.T) {
	tbl := &thrust.Table{
		Attempts: [thrust.NumAttempts][]float64{
			{10, 8, 4}, {11, 9, 3}, {9, 7, 5}, {10, 8, 4},
		},
		Average: []float64{10, 8, 4},
	}
	spread := thrust.RowSpread(tbl)

	var b bytes.Buffer
	if err := ThrustDecay(&b, tbl, spread, small); err != nil {
		t.Fatalf("ThrustDecay() error = %v", err)
	}
	assertPNG(t, &b)

	tests := []struct {
		name   string
		spread []float64
	}{
		{name: "short spread", spread: spread[:2]},
		{name: "NaN spread", spread: []float64{0, math.NaN(), 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ThrustDecay(&b, tbl, tt.spread, small); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRace(t *testing.T) {
	p := dynamics.DefaultParams
	p.Duration = 100 * time.Millisecond
	p.Cutoff = 50 * time.Millisecond
	p.StepsPerMs = 2
	run, err := dynamics.Simulate(p)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := Race(&b, run, 0.5, small); err != nil {
		t.Fatalf("Race() error = %v", err)
	}
	assertPNG(t, &b)

	if err := Race(&b, nil, 0, small); err == nil {
		t.Errorf("expected error for a nil run")
	}
}

package tether

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func relClose(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{name: "default", g: DefaultGeometry},
		{name: "zero tether length", g: Geometry{TotalSpan: 10, TetherLength: 0, SagHeight: 0.1}},
		{name: "zero sag", g: Geometry{TotalSpan: 10, TetherLength: 1, SagHeight: 0}, wantErr: true},
		{name: "negative sag", g: Geometry{TotalSpan: 10, TetherLength: 1, SagHeight: -1}, wantErr: true},
		{name: "span equals length", g: Geometry{TotalSpan: 1, TetherLength: 1, SagHeight: 0.1}, wantErr: true},
		{name: "negative length", g: Geometry{TotalSpan: 1, TetherLength: -0.1, SagHeight: 0.1}, wantErr: true},
		{name: "NaN", g: Geometry{TotalSpan: math.NaN(), TetherLength: 0, SagHeight: 0.1}, wantErr: true},
		{name: "infinite span", g: Geometry{TotalSpan: math.Inf(1), TetherLength: 0, SagHeight: 0.1}, wantErr: true},
		{name: "infinite sag", g: Geometry{TotalSpan: 10, TetherLength: 1, SagHeight: math.Inf(1)}, wantErr: true},
		{name: "infinite length", g: Geometry{TotalSpan: 10, TetherLength: math.Inf(-1), SagHeight: 0.1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestTensionSymmetricAndPositive(t *testing.T) {
	geometries := []Geometry{
		DefaultGeometry,
		{TotalSpan: 10, TetherLength: 2, SagHeight: 0.5},
		{TotalSpan: 3, TetherLength: 0, SagHeight: 1e-4},
	}
	for _, g := range geometries {
		reach := g.Reach()
		for i := 0; i <= 50; i++ {
			x := reach * float64(i) / 50
			a := Tension(x, g, DefaultScale)
			b := Tension(reach-x, g, DefaultScale)
			if !relClose(a, b, 1e-9) {
				t.Errorf("%+v: T(%v)=%v but T(%v)=%v", g, x, a, reach-x, b)
			}
			if !(a > 0) || math.IsInf(a, 0) {
				t.Errorf("%+v: T(%v)=%v, want finite positive", g, x, a)
			}
		}
	}
}

func TestTensionKnownValue(t *testing.T) {
	g := Geometry{TotalSpan: 10, TetherLength: 2, SagHeight: 3}
	// x=4: both segments are 3-4-5 triangles.
	got := Tension(4, g, 5)
	want := 5 * 3 * (1.0/5 + 1.0/5)
	if !relClose(got, want, 1e-12) {
		t.Errorf("Tension() = %v, want %v", got, want)
	}
}

func TestCurve(t *testing.T) {
	pts, err := Curve(DefaultGeometry, DefaultScale, 0)
	if err != nil {
		t.Fatalf("Curve() error = %v", err)
	}
	if len(pts) != DefaultCurvePoints {
		t.Fatalf("len = %d, want %d", len(pts), DefaultCurvePoints)
	}
	if pts[0].X != 0 || !relClose(pts[len(pts)-1].X, DefaultGeometry.Reach(), 1e-12) {
		t.Errorf("curve spans [%v, %v], want [0, %v]", pts[0].X, pts[len(pts)-1].X, DefaultGeometry.Reach())
	}

	s := Summarize(pts)
	// Tension peaks at the anchors and bottoms out mid-track.
	if s.Max.X != 0 && !relClose(s.Max.X, DefaultGeometry.Reach(), 1e-12) {
		t.Errorf("max at %v, want an endpoint", s.Max.X)
	}
	if math.Abs(s.Min.X-DefaultGeometry.Reach()/2) > DefaultGeometry.Reach()/float64(DefaultCurvePoints) {
		t.Errorf("min at %v, want near %v", s.Min.X, DefaultGeometry.Reach()/2)
	}

	if _, err := Curve(Geometry{TotalSpan: 1, SagHeight: 0}, 1, 10); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestFitRecoversKnownModel(t *testing.T) {
	const (
		reach = 24.85
		k     = 9.81
		h     = 0.5
	)
	truth := &FittedModel{Scale: k, EffectiveHeight: h, Reach: reach}
	var samples []Sample
	for _, x := range []float64{1, 5, 10, 15, 20, 24} {
		samples = append(samples, Sample{Position: x, Tension: truth.Tension(x)})
	}

	m, err := Fit(samples, reach, Guess{Amplitude: 4, Height: 0.4}, FitOptions{})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !relClose(m.Scale, k, 0.01) {
		t.Errorf("Scale = %v, want ~%v", m.Scale, k)
	}
	if !relClose(m.EffectiveHeight, h, 0.01) {
		t.Errorf("EffectiveHeight = %v, want ~%v", m.EffectiveHeight, h)
	}
	if m.SSE > 1e-6 {
		t.Errorf("SSE = %v, want ~0", m.SSE)
	}
	if m.Evaluations <= 0 || m.Evaluations > DefaultMaxEvaluations {
		t.Errorf("Evaluations = %d", m.Evaluations)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		reach   float64
		guess   Guess
	}{
		{name: "too few", samples: []Sample{{1, 1}}, reach: 25, guess: InitialGuess(10)},
		{name: "NaN tension", samples: []Sample{{1, 1}, {2, math.NaN()}, {3, 1}}, reach: 25, guess: InitialGuess(10)},
		{name: "bad reach", samples: []Sample{{1, 1}, {2, 1}}, reach: 0, guess: InitialGuess(10)},
		{name: "zero height guess", samples: []Sample{{1, 1}, {2, 1}}, reach: 25, guess: InitialGuess(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.samples, tt.reach, tt.guess, FitOptions{})
			if !errors.Is(err, ErrFitFailed) {
				t.Fatalf("Fit() error = %v, want ErrFitFailed", err)
			}
		})
	}
}

func TestFitMeasuredDatasetsNeverPanics(t *testing.T) {
	for _, d := range MeasuredDatasets() {
		m, err := Fit(d.Samples, DefaultGeometry.Reach(), InitialGuess(d.NominalHeightMm), FitOptions{})
		if err != nil {
			if !errors.Is(err, ErrFitFailed) {
				t.Errorf("h=%v: unexpected error %v", d.NominalHeightMm, err)
			}
			continue
		}
		if !(m.EffectiveHeight > 0) || math.IsInf(m.Scale, 0) || math.IsNaN(m.Scale) {
			t.Errorf("h=%v: unusable model %+v", d.NominalHeightMm, m)
		}
	}
}

func TestDatasets(t *testing.T) {
	measured := MeasuredDatasets()
	adjusted := AdjustedDatasets()
	if len(measured) != 5 || len(adjusted) != 5 {
		t.Fatalf("expected 5 heights, got %d and %d", len(measured), len(adjusted))
	}
	for i := range measured {
		if measured[i].Adjusted || !adjusted[i].Adjusted {
			t.Errorf("height %v: wrong Adjusted flags", measured[i].NominalHeightMm)
		}
		last := len(measured[i].Samples) - 1
		if measured[i].Samples[last].Tension >= adjusted[i].Samples[last].Tension {
			t.Errorf("height %v: adjusted far end should be higher than measured", measured[i].NominalHeightMm)
		}
		for j := 0; j < last; j++ {
			if measured[i].Samples[j] != adjusted[i].Samples[j] {
				t.Errorf("height %v: sample %d differs", measured[i].NominalHeightMm, j)
			}
		}
	}
	// Returned slices are independent copies.
	measured[0].Samples[0].Tension = 99
	if MeasuredDatasets()[0].Samples[0].Tension == 99 {
		t.Errorf("MeasuredDatasets leaked shared state")
	}
}

func TestLoadDatasetsCSV(t *testing.T) {
	in := `height_mm,position_m,tension_N
20, 5, 0.05
10, 5, 0.03
10, 1, 0.08
# comment
20, 1, 0.15
`
	ds, err := LoadDatasetsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadDatasetsCSV() error = %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("got %d datasets, want 2", len(ds))
	}
	if ds[0].NominalHeightMm != 10 || ds[1].NominalHeightMm != 20 {
		t.Errorf("heights = %v, %v", ds[0].NominalHeightMm, ds[1].NominalHeightMm)
	}
	if got := ds[0].Positions(); got[0] != 1 || got[1] != 5 {
		t.Errorf("positions not sorted: %v", got)
	}

	if _, err := LoadDatasetsCSV(strings.NewReader("10,1,0.1\n10,x,0.2\n")); err == nil {
		t.Errorf("expected parse error")
	}
	if _, err := LoadDatasetsCSV(strings.NewReader("")); err == nil {
		t.Errorf("expected error for empty input")
	}
	if _, err := LoadDatasetsCSV(strings.NewReader("0,1,0.1\n")); err == nil {
		t.Errorf("expected error for zero height")
	}
	for _, in := range []string{"10,1,0.1\n10,2,NaN\n", "10,Inf,0.1\n", "-Inf,1,0.1\n"} {
		_, err := LoadDatasetsCSV(strings.NewReader(in))
		if err == nil {
			t.Errorf("%q: expected error for non-finite value", in)
			continue
		}
		if !strings.Contains(err.Error(), "line ") {
			t.Errorf("%q: error %q does not name the line", in, err)
		}
	}
}

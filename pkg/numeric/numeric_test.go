package numeric

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		n           int
		want        []float64
	}{
		{name: "empty", start: 0, stop: 1, n: 0, want: nil},
		{name: "single", start: 3, stop: 9, n: 1, want: []float64{3}},
		{name: "endpoints", start: 0, stop: 1, n: 5, want: []float64{0, 0.25, 0.5, 0.75, 1}},
		{name: "descending", start: 2, stop: -2, n: 3, want: []float64{2, 0, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Linspace(tt.start, tt.stop, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Linspace() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !almostEqual(got[i], tt.want[i], 1e-12) {
					t.Errorf("Linspace()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCumulativeTrapezoid(t *testing.T) {
	got := CumulativeTrapezoid([]float64{0, 1, 2, 1, 0}, 0.01, 0)
	want := []float64{0, 0.005, 0.02, 0.035, 0.04}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Errorf("integral[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if CumulativeTrapezoid(nil, 0.01, 0) != nil {
		t.Errorf("expected nil for empty input")
	}

	seeded := CumulativeTrapezoid([]float64{2, 2}, 0.5, 1)
	if seeded[0] != 1 || !almostEqual(seeded[1], 2, 1e-12) {
		t.Errorf("seeded integral = %v, want [1 2]", seeded)
	}
}

func TestCumulativeTrapezoidXYMatchesUniform(t *testing.T) {
	ys := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i) * 0.01
	}
	a := CumulativeTrapezoid(ys, 0.01, 0)
	b := CumulativeTrapezoidXY(xs, ys, 0)
	for i := range a {
		if !almostEqual(a[i], b[i], 1e-12) {
			t.Errorf("index %d: uniform %v, xy %v", i, a[i], b[i])
		}
	}
}

func TestDefiniteIntegral(t *testing.T) {
	got := DefiniteIntegral(func(x float64) float64 { return x * x }, 0, 1, 1000)
	if !almostEqual(got, 1.0/3, 1e-6) {
		t.Errorf("DefiniteIntegral(x^2) = %v, want ~1/3", got)
	}
}

func TestIntegrators(t *testing.T) {
	grow := func(_, y float64) float64 { return y }
	xs := Linspace(0, 1, 101)

	rk := RungeKutta4(grow, xs, 1)
	if !almostEqual(rk[len(rk)-1], math.E, 1e-8) {
		t.Errorf("RungeKutta4 end = %v, want e", rk[len(rk)-1])
	}

	eu := Euler(grow, xs, 1)
	errEuler := math.Abs(eu[len(eu)-1] - math.E)
	if errEuler > 0.02 {
		t.Errorf("Euler end = %v, too far from e", eu[len(eu)-1])
	}
	if errEuler <= math.Abs(rk[len(rk)-1]-math.E) {
		t.Errorf("expected Euler to be less accurate than RK4")
	}

	if RungeKutta4(grow, nil, 1) != nil || Euler(grow, nil, 1) != nil {
		t.Errorf("expected nil for empty grid")
	}
}

func TestFirstCrossings(t *testing.T) {
	ys := []float64{10, 8, 4, 6}
	if i, ok := FirstAtMost(ys, 5); !ok || i != 2 {
		t.Errorf("FirstAtMost = %d, %v, want 2, true", i, ok)
	}
	if _, ok := FirstAtMost(ys, 1); ok {
		t.Errorf("FirstAtMost should not find a value <= 1")
	}
	if i, ok := FirstAtLeast(ys, 8); !ok || i != 0 {
		t.Errorf("FirstAtLeast = %d, %v, want 0, true", i, ok)
	}
	if _, ok := FirstAtLeast(ys, 11); ok {
		t.Errorf("FirstAtLeast should not find a value >= 11")
	}
}

// Package numeric holds the small sampled-signal helpers shared by the rig
// analyses: evenly spaced grids, cumulative integrals and fixed-step ODE
// integrators.
package numeric

import (
	"gonum.org/v1/gonum/floats"
)

// Derivative is the right-hand side of dy/dx = f(x, y).
type Derivative func(x, y float64) float64

// Linspace returns n evenly spaced values over [start, stop], both included.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

// CumulativeTrapezoid integrates ys sampled every dx with the trapezoidal rule
// and returns the running total, starting from initial.
func CumulativeTrapezoid(ys []float64, dx, initial float64) []float64 {
	if len(ys) == 0 {
		return nil
	}
	out := make([]float64, len(ys))
	out[0] = initial
	for i := 1; i < len(ys); i++ {
		out[i] = out[i-1] + (ys[i-1]+ys[i])*dx/2
	}
	return out
}

// CumulativeTrapezoidXY is CumulativeTrapezoid over a non-uniform grid.
// xs and ys must have the same length.
func CumulativeTrapezoidXY(xs, ys []float64, initial float64) []float64 {
	if len(ys) == 0 {
		return nil
	}
	if len(xs) != len(ys) {
		panic("numeric: length mismatch")
	}
	out := make([]float64, len(ys))
	out[0] = initial
	for i := 1; i < len(ys); i++ {
		out[i] = out[i-1] + (xs[i]-xs[i-1])*(ys[i-1]+ys[i])/2
	}
	return out
}

// DefiniteIntegral approximates the integral of f over [a, b] with n
// trapezoids.
func DefiniteIntegral(f func(float64) float64, a, b float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	xs := Linspace(a, b, n+1)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	acc := CumulativeTrapezoidXY(xs, ys, 0)
	return acc[len(acc)-1]
}

// Euler integrates f over the grid xs with the explicit Euler method.
func Euler(f Derivative, xs []float64, y0 float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	ys := make([]float64, len(xs))
	ys[0] = y0
	for i := 1; i < len(xs); i++ {
		h := xs[i] - xs[i-1]
		ys[i] = ys[i-1] + h*f(xs[i-1], ys[i-1])
	}
	return ys
}

// RungeKutta4 integrates f over the grid xs with the classic fourth order
// Runge-Kutta method.
func RungeKutta4(f Derivative, xs []float64, y0 float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	ys := make([]float64, len(xs))
	ys[0] = y0
	for i := 1; i < len(xs); i++ {
		h := xs[i] - xs[i-1]
		x, y := xs[i-1], ys[i-1]

		k1 := f(x, y)
		k2 := f(x+h/2, y+h/2*k1)
		k3 := f(x+h/2, y+h/2*k2)
		k4 := f(x+h, y+h*k3)

		ys[i] = y + h/6*(k1+2*k2+2*k3+k4)
	}
	return ys
}

// FirstAtLeast returns the index of the first value >= threshold.
func FirstAtLeast(ys []float64, threshold float64) (int, bool) {
	for i, y := range ys {
		if y >= threshold {
			return i, true
		}
	}
	return -1, false
}

// FirstAtMost returns the index of the first value <= threshold.
func FirstAtMost(ys []float64, threshold float64) (int, bool) {
	for i, y := range ys {
		if y <= threshold {
			return i, true
		}
	}
	return -1, false
}

// Scale multiplies every element of ys by factor in place and returns ys.
func Scale(ys []float64, factor float64) []float64 {
	floats.Scale(factor, ys)
	return ys
}

// Package tether models the tension in the guide tether of the test rig.
//
// The tether runs between two anchors TotalSpan apart. The car rides on a
// slack segment of length TetherLength that sags SagHeight below the anchor
// line, so a car at horizontal position x is pulled by two inclined segments.
// The resulting tension is
//
//	T(x) = k·h·(1/√(x²+h²) + 1/√((D−x−L)²+h²))
//
// for x in [0, D−L].
package tether

import (
	"errors"
	"math"

	pkgerrors "github.com/pkg/errors"

	"github.com/hayabusaracing/rig/pkg/numeric"
)

const (
	// Gravity is the local gravitational acceleration in m/s².
	Gravity = 9.81
	// DefaultScale is the closed-form tension scale of the rig, 2g rounded
	// to the precision it was measured with.
	DefaultScale = 19.6
	// DefaultCurvePoints is the sampling density of a tension curve.
	DefaultCurvePoints = 1000
)

// ErrInvalidGeometry is returned when a Geometry violates its invariants.
var ErrInvalidGeometry = errors.New("invalid rig geometry")

// Geometry describes one rig set-up, in meters.
type Geometry struct {
	TotalSpan    float64 `json:"totalSpan" yaml:"totalSpan"`
	TetherLength float64 `json:"tetherLength" yaml:"tetherLength"`
	SagHeight    float64 `json:"sagHeight" yaml:"sagHeight"`
}

// DefaultGeometry is the 25 m track with a 150 mm slack segment hanging 3 mm.
var DefaultGeometry = Geometry{
	TotalSpan:    25,
	TetherLength: 0.150,
	SagHeight:    0.003,
}

// Validate checks that every dimension is finite, TotalSpan > TetherLength >= 0
// and SagHeight > 0.
func (g Geometry) Validate() error {
	switch {
	case !finite(g.TotalSpan) || !finite(g.TetherLength) || !finite(g.SagHeight):
		return pkgerrors.Wrapf(ErrInvalidGeometry, "non-finite dimension in %+v", g)
	case g.TetherLength < 0:
		return pkgerrors.Wrapf(ErrInvalidGeometry, "tether length %g is negative", g.TetherLength)
	case g.TotalSpan <= g.TetherLength:
		return pkgerrors.Wrapf(ErrInvalidGeometry, "total span %g must exceed tether length %g", g.TotalSpan, g.TetherLength)
	case g.SagHeight <= 0:
		return pkgerrors.Wrapf(ErrInvalidGeometry, "sag height %g must be positive", g.SagHeight)
	}
	return nil
}

// Reach is the upper bound of the position domain, D−L.
func (g Geometry) Reach() float64 {
	return g.TotalSpan - g.TetherLength
}

// Tension returns the tether tension in newtons with the car at position x.
func Tension(x float64, g Geometry, k float64) float64 {
	return model(x, g.Reach(), k*g.SagHeight, g.SagHeight)
}

// model is T(x) = c·(1/√(x²+h²) + 1/√((reach−x)²+h²)) with c = k·h.
func model(x, reach, c, h float64) float64 {
	h2 := h * h
	rest := reach - x
	return c * (1/math.Sqrt(x*x+h2) + 1/math.Sqrt(rest*rest+h2))
}

// Point is one sample of a tension curve.
type Point struct {
	X       float64 `json:"x"`
	Tension float64 `json:"tension"`
}

// Curve samples the tension over [0, Reach] at n evenly spaced positions.
func Curve(g Geometry, k float64, n int) ([]Point, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultCurvePoints
	}
	xs := numeric.Linspace(0, g.Reach(), n)
	pts := make([]Point, len(xs))
	for i, x := range xs {
		pts[i] = Point{X: x, Tension: Tension(x, g, k)}
	}
	return pts, nil
}

// CurveSummary condenses a sampled curve for the console report.
type CurveSummary struct {
	Min      Point
	Max      Point
	Midpoint Point
}

// Summarize returns the extrema and the midpoint sample of pts.
func Summarize(pts []Point) CurveSummary {
	if len(pts) == 0 {
		return CurveSummary{}
	}
	s := CurveSummary{Min: pts[0], Max: pts[0], Midpoint: pts[len(pts)/2]}
	for _, p := range pts[1:] {
		if p.Tension < s.Min.Tension {
			s.Min = p
		}
		if p.Tension > s.Max.Tension {
			s.Max = p
		}
	}
	return s
}

package tether

import (
	"errors"
	"math"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"

	"github.com/hayabusaracing/rig/pkg/numeric"
)

// DefaultMaxEvaluations caps the model evaluations of a single fit.
const DefaultMaxEvaluations = 2000

// ErrFitFailed is returned when the least-squares fit does not produce a
// usable model. Callers are expected to recover from it.
var ErrFitFailed = errors.New("tether model fit failed")

// Sample is one measured tension at a horizontal position.
type Sample struct {
	Position float64 `json:"position" yaml:"position"`
	Tension  float64 `json:"tension" yaml:"tension"`
}

// Guess is the starting point of a fit, in the fit's own parameterization:
// Amplitude is the product k·h.
type Guess struct {
	Amplitude float64 `json:"amplitude"`
	Height    float64 `json:"height"`
}

// InitialGuess derives a starting point from the nominal sag height of a
// dataset, given in millimeters.
func InitialGuess(nominalMm float64) Guess {
	return Guess{Amplitude: 0.1, Height: nominalMm / 1000}
}

// FitOptions tunes the minimizer.
type FitOptions struct {
	MaxEvaluations int
}

// FittedModel is the result of fitting the tension model to samples.
type FittedModel struct {
	Scale           float64 `json:"scale"`
	EffectiveHeight float64 `json:"effectiveHeight"`
	Reach           float64 `json:"reach"`
	SSE             float64 `json:"sse"`
	Evaluations     int     `json:"evaluations"`
}

// Amplitude is k·h, the overall magnitude of the fitted curve.
func (m *FittedModel) Amplitude() float64 {
	return m.Scale * m.EffectiveHeight
}

// Tension evaluates the fitted model at x.
func (m *FittedModel) Tension(x float64) float64 {
	return model(x, m.Reach, m.Amplitude(), m.EffectiveHeight)
}

// Curve samples the fitted model at n evenly spaced positions over [from, to].
func (m *FittedModel) Curve(from, to float64, n int) []Point {
	xs := numeric.Linspace(from, to, n)
	pts := make([]Point, len(xs))
	for i, x := range xs {
		pts[i] = Point{X: x, Tension: m.Tension(x)}
	}
	return pts
}

// Fit adjusts the tension model to samples by nonlinear least squares. The
// free parameters are the scale k and the effective sag height h; reach is
// the usable span D−L the samples were taken over.
func Fit(samples []Sample, reach float64, guess Guess, opts FitOptions) (*FittedModel, error) {
	if len(samples) < 2 {
		return nil, pkgerrors.Wrapf(ErrFitFailed, "need at least 2 samples, got %d", len(samples))
	}
	for i, s := range samples {
		if !finite(s.Position) || !finite(s.Tension) {
			return nil, pkgerrors.Wrapf(ErrFitFailed, "sample %d is not finite", i)
		}
	}
	if !finite(reach) || reach <= 0 {
		return nil, pkgerrors.Wrapf(ErrFitFailed, "invalid reach %g", reach)
	}
	if !finite(guess.Amplitude) || !finite(guess.Height) || guess.Height == 0 {
		return nil, pkgerrors.Wrapf(ErrFitFailed, "invalid initial guess %+v", guess)
	}

	maxEvals := opts.MaxEvaluations
	if maxEvals <= 0 {
		maxEvals = DefaultMaxEvaluations
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			return sse(samples, reach, p[0], p[1])
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 20,
		},
	}

	res, err := optimize.Minimize(problem, []float64{guess.Amplitude, guess.Height}, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrFitFailed, "minimizer: %v", err)
	}
	switch res.Status {
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit, optimize.RuntimeLimit, optimize.Failure:
		return nil, pkgerrors.Wrapf(ErrFitFailed, "no convergence after %d evaluations (%v)", res.FuncEvaluations, res.Status)
	}

	// The model is even in h.
	amplitude, height := res.X[0], math.Abs(res.X[1])
	if !finite(amplitude) || !finite(height) || height < 1e-12 || !finite(res.F) {
		return nil, pkgerrors.Wrapf(ErrFitFailed, "degenerate result C=%g h=%g", amplitude, height)
	}

	return &FittedModel{
		Scale:           amplitude / height,
		EffectiveHeight: height,
		Reach:           reach,
		SSE:             res.F,
		Evaluations:     res.FuncEvaluations,
	}, nil
}

func sse(samples []Sample, reach, c, h float64) float64 {
	var sum float64
	for _, s := range samples {
		r := model(s.Position, reach, c, h) - s.Tension
		sum += r * r
	}
	return sum
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

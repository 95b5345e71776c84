package thrust

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Rating is a qualitative bucket for a consistency metric.
type Rating string

const (
	Excellent  Rating = "EXCELLENT"
	Good       Rating = "GOOD"
	Acceptable Rating = "ACCEPTABLE"
	Poor       Rating = "POOR"
)

// RateCV buckets a coefficient of variation given in percent.
func RateCV(cv float64) Rating {
	switch {
	case cv < 5:
		return Excellent
	case cv < 10:
		return Good
	case cv < 15:
		return Acceptable
	default:
		return Poor
	}
}

// RateCorrelation buckets a Pearson correlation coefficient.
func RateCorrelation(r float64) Rating {
	switch {
	case r > 0.95:
		return Excellent
	case r > 0.90:
		return Good
	case r > 0.80:
		return Acceptable
	default:
		return Poor
	}
}

// AttemptStats summarizes a single firing.
type AttemptStats struct {
	Peak    float64 `json:"peak"`
	Min     float64 `json:"min"`
	Impulse float64 `json:"impulse"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
}

// Variation is the spread of one statistic across attempts.
type Variation struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	CV     float64 `json:"cv"`
	Rating Rating  `json:"rating"`
}

// PairCorrelation is the Pearson correlation of two attempts (0-based).
type PairCorrelation struct {
	A int     `json:"a"`
	B int     `json:"b"`
	R float64 `json:"r"`
}

// Consistency describes how repeatable the attempts are.
type Consistency struct {
	Peak              Variation         `json:"peak"`
	Impulse           Variation         `json:"impulse"`
	Mean              Variation         `json:"mean"`
	Correlations      []PairCorrelation `json:"correlations"`
	MeanCorrelation   float64           `json:"meanCorrelation"`
	CorrelationRating Rating            `json:"correlationRating"`
}

// Analysis is the complete statistical report of a table.
type Analysis struct {
	Attempts    [NumAttempts]AttemptStats `json:"attempts"`
	Consistency Consistency               `json:"consistency"`
	Validity    Validity                  `json:"validity"`
	Summary     Summary                   `json:"summary"`
}

// Analyze computes per-attempt statistics, cross-attempt consistency and
// the overall validity verdict.
func Analyze(t *Table) (*Analysis, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	a := &Analysis{}
	var peaks, impulses, means [NumAttempts]float64
	for i, col := range t.Attempts {
		s := Attempt(col)
		a.Attempts[i] = s
		peaks[i], impulses[i], means[i] = s.Peak, s.Impulse, s.Mean
	}

	c := &a.Consistency
	c.Peak = variation(peaks[:])
	c.Impulse = variation(impulses[:])
	c.Mean = variation(means[:])

	rs := make([]float64, 0, NumAttempts*(NumAttempts-1)/2)
	for i := 0; i < NumAttempts; i++ {
		for j := i + 1; j < NumAttempts; j++ {
			r := stat.Correlation(t.Attempts[i], t.Attempts[j], nil)
			c.Correlations = append(c.Correlations, PairCorrelation{A: i, B: j, R: r})
			rs = append(rs, r)
		}
	}
	c.MeanCorrelation = stat.Mean(rs, nil)
	c.CorrelationRating = RateCorrelation(c.MeanCorrelation)

	a.Validity = Assess(c.Peak.CV, c.Impulse.CV, c.Mean.CV, c.MeanCorrelation)
	a.Summary = Summarize(t)
	return a, nil
}

// Attempt computes the statistics of one trace. The standard deviation is the
// sample (n−1) estimate.
func Attempt(col []float64) AttemptStats {
	if len(col) == 0 {
		return AttemptStats{}
	}
	s := AttemptStats{
		Peak:    floats.Max(col),
		Min:     floats.Min(col),
		Impulse: Impulse(col),
		Mean:    stat.Mean(col, nil),
	}
	if len(col) > 1 {
		s.StdDev = stat.StdDev(col, nil)
	}
	return s
}

// Impulse integrates a trace with the trapezoidal rule over Step.
func Impulse(col []float64) float64 {
	if len(col) < 2 {
		return 0
	}
	xs := make([]float64, len(col))
	for i := range xs {
		xs[i] = float64(i) * Step
	}
	return integrate.Trapezoidal(xs, col)
}

// CoefficientOfVariation is 100 × population std / mean. It is NaN when
// every value is zero and +Inf for any other zero mean.
func CoefficientOfVariation(xs []float64) float64 {
	mean, std := stat.PopMeanStdDev(xs, nil)
	switch {
	case mean == 0 && std == 0:
		return math.NaN()
	case mean == 0:
		return math.Inf(1)
	case std == 0:
		return 0
	}
	return std / mean * 100
}

func variation(xs []float64) Variation {
	cv := CoefficientOfVariation(xs)
	return Variation{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		CV:     cv,
		Rating: RateCV(cv),
	}
}

// RowSpread returns the sample standard deviation across attempts for each
// row.
func RowSpread(t *Table) []float64 {
	out := make([]float64, t.Len())
	row := make([]float64, NumAttempts)
	for i := range out {
		for j := range row {
			row[j] = t.Attempts[j][i]
		}
		out[i] = stat.StdDev(row, nil)
	}
	return out
}

// Degenerate reports whether some statistic is undefined, as happens for
// constant or all-zero traces.
func (a *Analysis) Degenerate() bool {
	vals := []float64{
		a.Consistency.Peak.CV,
		a.Consistency.Impulse.CV,
		a.Consistency.Mean.CV,
		a.Consistency.MeanCorrelation,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

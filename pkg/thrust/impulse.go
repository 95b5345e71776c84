package thrust

import (
	"encoding/json"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/hayabusaracing/rig/pkg/numeric"
)

// CumulativeImpulse integrates the average trace with the trapezoidal rule;
// element 0 is always 0.
func CumulativeImpulse(avg []float64) []float64 {
	return numeric.CumulativeTrapezoid(avg, Step, 0)
}

// DecayPoint is where the average trace first falls to half its peak.
type DecayPoint struct {
	Index int           `json:"index"`
	Time  time.Duration `json:"-"`
}

// Seconds returns the decay time in seconds.
func (d DecayPoint) Seconds() float64 {
	return float64(d.Index) * Step
}

// HalfPeakDecay returns the first sample whose value is at most half of the
// trace maximum, or false if the trace never gets there.
func HalfPeakDecay(avg []float64) (DecayPoint, bool) {
	if len(avg) == 0 {
		return DecayPoint{}, false
	}
	half := floats.Max(avg) * 0.5
	i, ok := numeric.FirstAtMost(avg, half)
	if !ok {
		return DecayPoint{}, false
	}
	return DecayPoint{Index: i, Time: time.Duration(i) * SampleInterval}, true
}

// Summary is the headline view of the average trace.
type Summary struct {
	Samples     int         `json:"samples"`
	Duration    float64     `json:"durationSeconds"`
	PeakAverage float64     `json:"peakAverage"`
	Final       float64     `json:"finalAverage"`
	TotalDecay  float64     `json:"totalDecay"`
	HalfPeak    *DecayPoint `json:"halfPeak,omitempty"`
}

// Summarize builds the Summary of a validated table.
func Summarize(t *Table) Summary {
	n := t.Len()
	if n == 0 {
		return Summary{}
	}
	peak := floats.Max(t.Average)
	final := t.Average[n-1]
	s := Summary{
		Samples:     n,
		Duration:    float64(n-1) * Step,
		PeakAverage: peak,
		Final:       final,
		TotalDecay:  peak - final,
	}
	if d, ok := HalfPeakDecay(t.Average); ok {
		s.HalfPeak = &d
	}
	return s
}

// ImpulsePoint is one row of the exported impulse series.
type ImpulsePoint struct {
	TimeMs             int     `json:"time_ms"`
	ThrustN            float64 `json:"thrust_N"`
	IntegratedThrustNs float64 `json:"integrated_thrust_Ns"`
}

// ImpulseUnits documents the units of an ImpulseDocument.
type ImpulseUnits struct {
	Time             string `json:"time"`
	Thrust           string `json:"thrust"`
	IntegratedThrust string `json:"integrated_thrust"`
}

// ImpulseDocument is the JSON export of the average trace and its running
// impulse.
type ImpulseDocument struct {
	Description     string         `json:"description"`
	Units           ImpulseUnits   `json:"units"`
	SamplingRate    string         `json:"sampling_rate"`
	TotalDurationMs int            `json:"total_duration_ms"`
	TotalImpulse    float64        `json:"total_impulse"`
	Data            []ImpulsePoint `json:"data"`
}

// DefaultDescription heads exported impulse documents.
const DefaultDescription = "Thrust decay data with integrated values - Hayabusa Racing"

// NewImpulseDocument builds the export of t's average trace.
func NewImpulseDocument(t *Table, description string) *ImpulseDocument {
	if description == "" {
		description = DefaultDescription
	}
	integrated := CumulativeImpulse(t.Average)
	stepMs := int(SampleInterval / time.Millisecond)

	doc := &ImpulseDocument{
		Description: description,
		Units: ImpulseUnits{
			Time:             "milliseconds",
			Thrust:           "Newtons",
			IntegratedThrust: "Newton-seconds (impulse)",
		},
		SamplingRate: "10ms intervals",
		Data:         make([]ImpulsePoint, t.Len()),
	}
	for i, v := range t.Average {
		doc.Data[i] = ImpulsePoint{
			TimeMs:             i * stepMs,
			ThrustN:            v,
			IntegratedThrustNs: integrated[i],
		}
	}
	if n := len(doc.Data); n > 0 {
		doc.TotalDurationMs = doc.Data[n-1].TimeMs
		doc.TotalImpulse = doc.Data[n-1].IntegratedThrustNs
	}
	return doc
}

// Encode writes the document as indented JSON.
func (d *ImpulseDocument) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

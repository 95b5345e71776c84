package tether

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Dataset is the set of tension samples recorded at one nominal sag height.
type Dataset struct {
	NominalHeightMm float64  `json:"nominalHeightMm" yaml:"nominalHeightMm"`
	Samples         []Sample `json:"samples" yaml:"samples"`
	// Adjusted marks values that were edited after recording.
	Adjusted bool `json:"adjusted,omitempty" yaml:"adjusted,omitempty"`
}

// Positions returns the sample positions in order.
func (d Dataset) Positions() []float64 {
	xs := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		xs[i] = s.Position
	}
	return xs
}

var (
	measuredPositions = []float64{1, 5, 10, 15, 20, 24}
	measuredHeights   = []float64{10, 20, 30, 40, 50}

	// Rows follow measuredHeights, columns follow measuredPositions.
	measuredTensions = [][]float64{
		{0.08, 0.03, 0.03, 0.03, 0.04, 0.05},
		{0.15, 0.05, 0.05, 0.05, 0.06, 0.09},
		{0.23, 0.07, 0.06, 0.06, 0.08, 0.12},
		{0.31, 0.08, 0.07, 0.07, 0.09, 0.17},
		{0.38, 0.09, 0.08, 0.08, 0.1, 0.2},
	}

	// Far-end values that were raised by hand to make old charts look
	// symmetric. They are not measurements.
	adjustedFarEnd = []float64{0.07, 0.13, 0.20, 0.28, 0.35}
)

// MeasuredDatasets returns the tension samples as recorded on the rig.
func MeasuredDatasets() []Dataset {
	return buildDatasets(false)
}

// AdjustedDatasets returns the samples with the hand-edited far-end values
// used by earlier charts. Only useful to reproduce those charts.
func AdjustedDatasets() []Dataset {
	return buildDatasets(true)
}

func buildDatasets(adjusted bool) []Dataset {
	out := make([]Dataset, len(measuredHeights))
	for i, h := range measuredHeights {
		samples := make([]Sample, len(measuredPositions))
		for j, x := range measuredPositions {
			samples[j] = Sample{Position: x, Tension: measuredTensions[i][j]}
		}
		if adjusted {
			samples[len(samples)-1].Tension = adjustedFarEnd[i]
		}
		out[i] = Dataset{NominalHeightMm: h, Samples: samples, Adjusted: adjusted}
	}
	return out
}

// LoadDatasetsCSV reads rows of height_mm,position_m,tension_N and groups
// them by height. A leading header row is skipped. Datasets are returned by
// ascending height, samples by ascending position.
func LoadDatasetsCSV(r io.Reader) ([]Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	byHeight := map[float64][]Sample{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to read tension samples")
		}
		line++

		vals := make([]float64, 3)
		for i, field := range rec {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				break
			}
		}
		if err != nil {
			if line == 1 {
				// header
				continue
			}
			return nil, pkgerrors.Wrapf(err, "line %d", line)
		}
		if !finite(vals[0]) || !finite(vals[1]) || !finite(vals[2]) {
			return nil, pkgerrors.Errorf("line %d: non-finite value in %v", line, rec)
		}
		if vals[0] <= 0 {
			return nil, pkgerrors.Errorf("line %d: height must be positive, got %g", line, vals[0])
		}
		byHeight[vals[0]] = append(byHeight[vals[0]], Sample{Position: vals[1], Tension: vals[2]})
	}
	if len(byHeight) == 0 {
		return nil, pkgerrors.New("no tension samples found")
	}

	heights := make([]float64, 0, len(byHeight))
	for h := range byHeight {
		heights = append(heights, h)
	}
	sort.Float64s(heights)

	out := make([]Dataset, 0, len(heights))
	for _, h := range heights {
		samples := byHeight[h]
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].Position < samples[j].Position })
		out = append(out, Dataset{NominalHeightMm: h, Samples: samples})
	}
	return out, nil
}

// Package thrust analyzes thrust traces recorded during repeated engine test
// firings. A trace is sampled every 10 ms; a table holds four attempts and
// their precomputed average.
package thrust

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// NumAttempts is the number of repeated firings per table.
	NumAttempts = 4
	// SampleInterval is the time between consecutive rows.
	SampleInterval = 10 * time.Millisecond
	// Step is SampleInterval in seconds, the integration step.
	Step = 0.01
)

var (
	// ErrInputNotFound is returned when the thrust CSV file does not exist.
	ErrInputNotFound = errors.New("thrust input file not found")
	// ErrInvalidTable is returned for tables that violate the column
	// invariants.
	ErrInvalidTable = errors.New("invalid thrust table")
)

// Table is a thrust recording in columnar form. Row i was sampled at
// i × SampleInterval.
type Table struct {
	Attempts [NumAttempts][]float64
	Average  []float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Average)
}

// Validate checks that all columns have the same, non-zero length.
func (t *Table) Validate() error {
	if t.Len() == 0 {
		return pkgerrors.Wrap(ErrInvalidTable, "no rows")
	}
	for i, a := range t.Attempts {
		if len(a) != t.Len() {
			return pkgerrors.Wrapf(ErrInvalidTable, "attempt %d has %d rows, average has %d", i+1, len(a), t.Len())
		}
	}
	return nil
}

// Times returns the sample times in seconds.
func (t *Table) Times() []float64 {
	ts := make([]float64, t.Len())
	for i := range ts {
		ts[i] = float64(i) * Step
	}
	return ts
}

// AttemptName is the display name of attempt i (0-based).
func AttemptName(i int) string {
	return "Attempt" + strconv.Itoa(i+1)
}

// ReadCSV parses five unlabeled numeric columns: four attempts, then the
// average. Blank lines are ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = NumAttempts + 1
	cr.TrimLeadingSpace = true

	t := &Table{}
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrInvalidTable, "%v", err)
		}
		row++

		for col, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrInvalidTable, "row %d column %d: %v", row, col+1, err)
			}
			if col < NumAttempts {
				t.Attempts[col] = append(t.Attempts[col], v)
			} else {
				t.Average = append(t.Average, v)
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadCSV reads a table from path.
func LoadCSV(path string) (*Table, error) {
	fp, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrapf(ErrInputNotFound, "%s", path)
		}
		return nil, pkgerrors.Wrapf(err, "failed to open file %s", path)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", path)
		}
	}(fp)

	t, err := ReadCSV(fp)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"rows": t.Len(),
	}).Debug("thrust table loaded")

	return t, nil
}

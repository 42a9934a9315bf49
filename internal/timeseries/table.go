// Package timeseries provides the tabular container for per-instrument
// OHLCV history, engineered features and the training target.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// Row is a single dated observation. Features holds the engineered
// columns in the order declared by the owning table; Target is the value
// the regression model is fitted against.
type Row struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	Features []float64
	Target   float64
}

// Table is an ordered sequence of rows sharing one feature schema.
// Rows must be strictly ascending by date with no duplicates.
type Table struct {
	FeatureNames []string
	Rows         []Row
}

// New creates an empty table with the given feature schema.
func New(featureNames []string) *Table {
	return &Table{FeatureNames: featureNames}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// FeatureCount returns the width of the feature schema.
func (t *Table) FeatureCount() int {
	return len(t.FeatureNames)
}

// Append adds a row, enforcing date ordering and feature width.
func (t *Table) Append(row Row) error {
	if len(row.Features) != len(t.FeatureNames) {
		return fmt.Errorf("%w: expected %d features, got %d", models.ErrShapeMismatch, len(t.FeatureNames), len(row.Features))
	}
	if n := len(t.Rows); n > 0 && !t.Rows[n-1].Date.Before(row.Date) {
		return fmt.Errorf("%w: %s does not follow %s", models.ErrUnorderedDates,
			row.Date.Format("2006-01-02"), t.Rows[n-1].Date.Format("2006-01-02"))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Slice returns a view of rows with start <= date <= end. The returned
// table shares row storage with the receiver; callers must not append to
// either while holding the other.
func (t *Table) Slice(start, end time.Time) *Table {
	lo := sort.Search(len(t.Rows), func(i int) bool {
		return !t.Rows[i].Date.Before(start)
	})
	hi := sort.Search(len(t.Rows), func(i int) bool {
		return t.Rows[i].Date.After(end)
	})
	if lo > hi {
		lo = hi
	}
	return &Table{FeatureNames: t.FeatureNames, Rows: t.Rows[lo:hi]}
}

// SplitWindows holds the inclusive date boundaries for a train/test split.
// Non-overlap of the two windows is the caller's responsibility.
type SplitWindows struct {
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// Split produces the train and test views for the given windows.
func (t *Table) Split(w SplitWindows) (train, test *Table) {
	return t.Slice(w.TrainStart, w.TrainEnd), t.Slice(w.TestStart, w.TestEnd)
}

// DropUndefined returns a copy of the table with every row containing a
// non-finite feature or target removed. Indicator warm-up rows land here
// as NaNs, so this must run before training.
func (t *Table) DropUndefined() *Table {
	out := New(t.FeatureNames)
	for _, row := range t.Rows {
		if rowDefined(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func rowDefined(row Row) bool {
	if !finite(row.Target) {
		return false
	}
	for _, f := range row.Features {
		if !finite(f) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks the invariants required before training: non-empty,
// consistent feature width, strictly ascending dates and finite values.
func (t *Table) Validate() error {
	if len(t.Rows) == 0 {
		return models.ErrEmptyTable
	}
	for i, row := range t.Rows {
		if len(row.Features) != len(t.FeatureNames) {
			return fmt.Errorf("%w: row %d has %d features, schema has %d",
				models.ErrShapeMismatch, i, len(row.Features), len(t.FeatureNames))
		}
		if i > 0 && !t.Rows[i-1].Date.Before(row.Date) {
			return fmt.Errorf("%w: row %d", models.ErrUnorderedDates, i)
		}
		if !rowDefined(row) {
			return fmt.Errorf("%w: row %d (%s)", models.ErrNonFiniteValue, i, row.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// FeatureMatrix returns the feature rows as a batch-major matrix.
func (t *Table) FeatureMatrix() [][]float64 {
	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Features
	}
	return out
}

// Targets returns the target column.
func (t *Table) Targets() []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Target
	}
	return out
}

// Dates returns the date column.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Date
	}
	return out
}

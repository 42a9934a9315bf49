package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpe-scout/internal/models"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func buildTable(t *testing.T, n int) *Table {
	t.Helper()
	table := New([]string{"f1", "f2"})
	for i := 0; i < n; i++ {
		require.NoError(t, table.Append(Row{
			Date:     day(i),
			Close:    100 + float64(i),
			Features: []float64{float64(i), -float64(i)},
			Target:   0.01 * float64(i),
		}))
	}
	return table
}

func TestAppendEnforcesSchema(t *testing.T) {
	table := New([]string{"f1", "f2"})

	err := table.Append(Row{Date: day(0), Features: []float64{1}})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestAppendEnforcesOrdering(t *testing.T) {
	table := buildTable(t, 3)

	err := table.Append(Row{Date: day(2), Features: []float64{9, 9}})
	assert.ErrorIs(t, err, models.ErrUnorderedDates)

	err = table.Append(Row{Date: day(1), Features: []float64{9, 9}})
	assert.ErrorIs(t, err, models.ErrUnorderedDates)
}

func TestSliceInclusiveBounds(t *testing.T) {
	table := buildTable(t, 10)

	view := table.Slice(day(2), day(5))
	require.Equal(t, 4, view.Len())
	assert.Equal(t, day(2), view.Rows[0].Date)
	assert.Equal(t, day(5), view.Rows[3].Date)
}

func TestSliceOutsideRange(t *testing.T) {
	table := buildTable(t, 5)

	assert.Equal(t, 0, table.Slice(day(10), day(20)).Len())
	assert.Equal(t, 0, table.Slice(day(-10), day(-1)).Len())
	assert.Equal(t, 5, table.Slice(day(-10), day(20)).Len())
}

func TestSplit(t *testing.T) {
	table := buildTable(t, 10)

	train, test := table.Split(SplitWindows{
		TrainStart: day(0), TrainEnd: day(6),
		TestStart: day(7), TestEnd: day(9),
	})
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())
	assert.Equal(t, table.FeatureNames, train.FeatureNames)
}

func TestDropUndefined(t *testing.T) {
	table := New([]string{"f1"})
	require.NoError(t, table.Append(Row{Date: day(0), Features: []float64{math.NaN()}, Target: 0.1}))
	require.NoError(t, table.Append(Row{Date: day(1), Features: []float64{0.5}, Target: 0.1}))
	require.NoError(t, table.Append(Row{Date: day(2), Features: []float64{0.5}, Target: math.NaN()}))
	require.NoError(t, table.Append(Row{Date: day(3), Features: []float64{math.Inf(1)}, Target: 0.1}))
	require.NoError(t, table.Append(Row{Date: day(4), Features: []float64{-0.5}, Target: 0.2}))

	cleaned := table.DropUndefined()
	require.Equal(t, 2, cleaned.Len())
	assert.Equal(t, day(1), cleaned.Rows[0].Date)
	assert.Equal(t, day(4), cleaned.Rows[1].Date)

	// The original table is untouched.
	assert.Equal(t, 5, table.Len())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, New([]string{"f1"}).Validate(), models.ErrEmptyTable)

	good := buildTable(t, 3)
	assert.NoError(t, good.Validate())

	nonFinite := New([]string{"f1"})
	require.NoError(t, nonFinite.Append(Row{Date: day(0), Features: []float64{1}, Target: math.NaN()}))
	assert.ErrorIs(t, nonFinite.Validate(), models.ErrNonFiniteValue)

	// Corrupting rows directly bypasses Append's checks.
	unordered := buildTable(t, 3)
	unordered.Rows[2].Date = day(0)
	assert.ErrorIs(t, unordered.Validate(), models.ErrUnorderedDates)

	ragged := buildTable(t, 3)
	ragged.Rows[1].Features = []float64{1}
	assert.ErrorIs(t, ragged.Validate(), models.ErrShapeMismatch)
}

func TestColumnAccessors(t *testing.T) {
	table := buildTable(t, 4)

	matrix := table.FeatureMatrix()
	require.Len(t, matrix, 4)
	assert.Equal(t, []float64{2, -2}, matrix[2])

	targets := table.Targets()
	require.Len(t, targets, 4)
	assert.InDelta(t, 0.03, targets[3], 1e-12)

	dates := table.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, day(3), dates[3])
}

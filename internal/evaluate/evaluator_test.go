package evaluate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpe-scout/internal/models"
)

func TestEvaluateIdenticalSeries(t *testing.T) {
	series := []float64{0.3, -0.1, 0.25, -0.4, 0.05}

	report, err := Evaluate(series, series)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.MSE)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, 1.0, report.Precision)
	assert.Equal(t, 1.0, report.Recall)
}

func TestEvaluateMSE(t *testing.T) {
	predictions := []float64{1, 2, 3}
	targets := []float64{2, 2, 5}

	report, err := Evaluate(predictions, targets)
	require.NoError(t, err)

	// (1 + 0 + 4) / 3
	assert.InDelta(t, 5.0/3.0, report.MSE, 1e-12)
}

func TestEvaluateDirectionalAccuracy(t *testing.T) {
	tests := []struct {
		name        string
		predictions []float64
		targets     []float64
		accuracy    float64
	}{
		{
			name:        "all signs match",
			predictions: []float64{0.5, -0.5, 0.1},
			targets:     []float64{0.9, -0.1, 0.2},
			accuracy:    1.0,
		},
		{
			name:        "all signs differ",
			predictions: []float64{0.5, -0.5},
			targets:     []float64{-0.9, 0.1},
			accuracy:    0.0,
		},
		{
			name:        "zero only matches zero",
			predictions: []float64{0, 0, 0.5},
			targets:     []float64{0, 0.5, 0.5},
			accuracy:    2.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Evaluate(tt.predictions, tt.targets)
			require.NoError(t, err)
			assert.InDelta(t, tt.accuracy, report.Accuracy, 1e-12)
		})
	}
}

func TestEvaluatePrecisionRecall(t *testing.T) {
	// Two positive predictions, one of which is truly positive; three
	// positive targets in total.
	predictions := []float64{0.5, 0.5, -0.5, -0.5}
	targets := []float64{0.5, -0.5, 0.5, 0.5}

	report, err := Evaluate(predictions, targets)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, report.Precision, 1e-12)
	assert.InDelta(t, 1.0/3.0, report.Recall, 1e-12)
}

func TestEvaluateUndefinedPrecision(t *testing.T) {
	// No positive predictions.
	report, err := Evaluate([]float64{-0.5, -0.1}, []float64{0.5, 0.1})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(report.Precision))
	assert.Equal(t, 0.0, report.Recall)
}

func TestEvaluateUndefinedRecall(t *testing.T) {
	// No positive targets.
	report, err := Evaluate([]float64{0.5, 0.1}, []float64{-0.5, -0.1})
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.Precision)
	assert.True(t, math.IsNaN(report.Recall))
}

func TestEvaluateBounds(t *testing.T) {
	predictions := []float64{0.9, -0.3, 0.2, 0.7, -0.8}
	targets := []float64{0.1, 0.3, -0.2, 0.6, -0.4}

	report, err := Evaluate(predictions, targets)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.MSE, 0.0)
	assert.GreaterOrEqual(t, report.Accuracy, 0.0)
	assert.LessOrEqual(t, report.Accuracy, 1.0)
	assert.GreaterOrEqual(t, report.Precision, 0.0)
	assert.LessOrEqual(t, report.Precision, 1.0)
	assert.GreaterOrEqual(t, report.Recall, 0.0)
	assert.LessOrEqual(t, report.Recall, 1.0)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptySeries)

	_, err = Evaluate([]float64{1}, nil)
	assert.ErrorIs(t, err, models.ErrEmptySeries)

	_, err = Evaluate(make([]float64, 10), make([]float64, 9))
	assert.ErrorIs(t, err, models.ErrLengthMismatch)
}

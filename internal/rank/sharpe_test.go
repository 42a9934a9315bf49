package rank

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/nn"
	"github.com/yourusername/sharpe-scout/internal/timeseries"
)

func TestParseUndefinedPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    UndefinedPolicy
		wantErr bool
	}{
		{input: "", want: UndefinedLast},
		{input: "last", want: UndefinedLast},
		{input: "first", want: UndefinedFirst},
		{input: "exclude", want: UndefinedExclude},
		{input: "middle", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseUndefinedPolicy(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestSharpeBaseline(t *testing.T) {
	r := NewRanker()

	returns := []float64{0.02, -0.01, 0.03, 0.0}
	mean := 0.01
	variance := (0.0001 + 0.0004 + 0.0004 + 0.0001) / 4
	want := mean / math.Sqrt(variance)

	assert.InDelta(t, want, r.sharpe(returns), 1e-12)
}

func TestSharpePositiveScaleInvariance(t *testing.T) {
	r := NewRanker()
	returns := []float64{0.02, -0.01, 0.03, 0.005, -0.015}

	base := r.sharpe(returns)
	scaled := make([]float64, len(returns))
	for i, v := range returns {
		scaled[i] = v * 7.5
	}

	assert.InDelta(t, base, r.sharpe(scaled), 1e-12)
}

func TestSharpeNegativeScaleFlipsSign(t *testing.T) {
	r := NewRanker()
	returns := []float64{0.02, -0.01, 0.03, 0.005, -0.015}

	base := r.sharpe(returns)
	flipped := make([]float64, len(returns))
	for i, v := range returns {
		flipped[i] = -v
	}

	assert.InDelta(t, -base, r.sharpe(flipped), 1e-12)
}

func TestSharpeZeroVariance(t *testing.T) {
	r := NewRanker()
	assert.True(t, math.IsNaN(r.sharpe([]float64{0.01, 0.01, 0.01})))
	assert.True(t, math.IsNaN(r.sharpe([]float64{0, 0, 0})))
}

func TestSharpeRiskFreeAdjustment(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, 0.0}

	base := NewRanker()
	adjusted := &Ranker{RiskFreeRate: 0.005, ApplyRiskFree: true, Policy: UndefinedLast}

	baseRatio := base.sharpe(returns)
	adjRatio := adjusted.sharpe(returns)
	assert.Less(t, adjRatio, baseRatio)

	// Subtracting the rate shifts the numerator only.
	variance := 0.0
	for _, v := range returns {
		d := v - 0.01
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(returns)))
	assert.InDelta(t, (0.01-0.005)/std, adjRatio, 1e-12)
}

func TestBuildTableOrdering(t *testing.T) {
	r := NewRanker()
	rows := []models.RankingRow{
		{Symbol: "EURUSD", SharpeRatio: 0.5},
		{Symbol: "GBPUSD", SharpeRatio: -0.2},
		{Symbol: "BTC", SharpeRatio: 1.3},
	}

	table := r.BuildTable(rows)
	require.Len(t, table, 3)
	assert.Equal(t, "BTC", table[0].Symbol)
	assert.Equal(t, "EURUSD", table[1].Symbol)
	assert.Equal(t, "GBPUSD", table[2].Symbol)
}

func TestBuildTableStableTies(t *testing.T) {
	r := NewRanker()
	rows := []models.RankingRow{
		{Symbol: "A", SharpeRatio: 0.5},
		{Symbol: "B", SharpeRatio: 0.5},
		{Symbol: "C", SharpeRatio: 0.5},
	}

	table := r.BuildTable(rows)
	require.Len(t, table, 3)
	assert.Equal(t, "A", table[0].Symbol)
	assert.Equal(t, "B", table[1].Symbol)
	assert.Equal(t, "C", table[2].Symbol)
}

func TestBuildTableUndefinedPolicies(t *testing.T) {
	rows := []models.RankingRow{
		{Symbol: "FLAT", SharpeRatio: math.NaN()},
		{Symbol: "GOOD", SharpeRatio: 1.0},
		{Symbol: "BAD", SharpeRatio: -1.0},
	}

	tests := []struct {
		policy UndefinedPolicy
		want   []string
	}{
		{policy: UndefinedLast, want: []string{"GOOD", "BAD", "FLAT"}},
		{policy: UndefinedFirst, want: []string{"FLAT", "GOOD", "BAD"}},
		{policy: UndefinedExclude, want: []string{"GOOD", "BAD"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			r := &Ranker{Policy: tt.policy}
			table := r.BuildTable(rows)
			require.Len(t, table, len(tt.want))
			for i, symbol := range tt.want {
				assert.Equal(t, symbol, table[i].Symbol)
			}
		})
	}
}

func TestScoreRunsInEvaluationMode(t *testing.T) {
	net, err := nn.NewRegressionNetwork(2, 8, 0.5, 7)
	require.NoError(t, err)
	net.SetTraining(true)

	table := timeseries.New([]string{"f1", "f2"})
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		require.NoError(t, table.Append(timeseries.Row{
			Date:     day.AddDate(0, 0, i),
			Features: []float64{float64(i%5) * 0.1, -0.2},
			Target:   0.01 * float64(i%3-1),
		}))
	}

	r := NewRanker()
	first, err := r.Score(net, table)
	require.NoError(t, err)
	second, err := r.Score(net, table)
	require.NoError(t, err)

	// Dropout is inactive during scoring, so repeated runs agree even
	// though the network was left in training mode.
	if math.IsNaN(first) {
		assert.True(t, math.IsNaN(second))
	} else {
		assert.Equal(t, first, second)
	}
	assert.True(t, net.Training(), "training mode must be restored")
}

func TestScoreEmptyTable(t *testing.T) {
	net, err := nn.NewRegressionNetwork(2, 8, 0, 1)
	require.NoError(t, err)

	r := NewRanker()
	_, err = r.Score(net, timeseries.New([]string{"f1", "f2"}))
	assert.ErrorIs(t, err, models.ErrEmptyTable)
}

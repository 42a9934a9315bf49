// Package rank derives the risk-adjusted ranking score from model
// output and orders instruments by it.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/nn"
	"github.com/yourusername/sharpe-scout/internal/timeseries"
)

// UndefinedPolicy controls where instruments with an undefined Sharpe
// ratio (zero-variance return series) land in the ranking table.
type UndefinedPolicy string

const (
	// UndefinedLast sorts undefined ratios after all defined ones. Default.
	UndefinedLast UndefinedPolicy = "last"
	// UndefinedFirst sorts undefined ratios before all defined ones.
	UndefinedFirst UndefinedPolicy = "first"
	// UndefinedExclude drops undefined ratios from the table.
	UndefinedExclude UndefinedPolicy = "exclude"
)

// ParseUndefinedPolicy validates a configured policy string.
func ParseUndefinedPolicy(s string) (UndefinedPolicy, error) {
	switch UndefinedPolicy(s) {
	case UndefinedLast, UndefinedFirst, UndefinedExclude:
		return UndefinedPolicy(s), nil
	case "":
		return UndefinedLast, nil
	default:
		return "", fmt.Errorf("unknown undefined-sharpe policy %q", s)
	}
}

// Ranker computes Sharpe ratios from model predictions.
//
// The baseline formula is mean(returns)/populationStd(returns) with no
// risk-free subtraction and no annualization; set ApplyRiskFree to
// subtract the configured per-period rate from the mean instead.
type Ranker struct {
	RiskFreeRate  float64
	ApplyRiskFree bool
	Policy        UndefinedPolicy
}

// NewRanker creates a ranker with the default undefined-ratio policy.
func NewRanker() *Ranker {
	return &Ranker{Policy: UndefinedLast}
}

// Score computes the Sharpe ratio of the strategy-return series
// implied by running the model over the table in evaluation mode.
// return[i] = prediction[i] * target[i]: the prediction acts as a signed
// position applied to the realized move.
//
// Returns NaN (not an error) when the return series has zero variance.
func (r *Ranker) Score(net *nn.RegressionNetwork, table *timeseries.Table) (float64, error) {
	if table.Len() == 0 {
		return 0, models.ErrEmptyTable
	}

	wasTraining := net.Training()
	net.SetTraining(false)
	defer net.SetTraining(wasTraining)

	predictions, err := net.Predict(table.FeatureMatrix())
	if err != nil {
		return 0, fmt.Errorf("prediction failed: %w", err)
	}

	targets := table.Targets()
	returns := make([]float64, len(predictions))
	for i, p := range predictions {
		returns[i] = p * targets[i]
	}
	return r.sharpe(returns), nil
}

func (r *Ranker) sharpe(returns []float64) float64 {
	mean := 0.0
	for _, v := range returns {
		mean += v
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, v := range returns {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return math.NaN()
	}
	if r.ApplyRiskFree {
		mean -= r.RiskFreeRate
	}
	return mean / std
}

// BuildTable sorts ranking rows descending by Sharpe ratio. The sort is
// stable, so ties keep insertion order. Undefined ratios are placed per
// the configured policy.
func (r *Ranker) BuildTable(rows []models.RankingRow) []models.RankingRow {
	policy := r.Policy
	if policy == "" {
		policy = UndefinedLast
	}

	out := make([]models.RankingRow, 0, len(rows))
	for _, row := range rows {
		if policy == UndefinedExclude && math.IsNaN(row.SharpeRatio) {
			continue
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SharpeRatio, out[j].SharpeRatio
		aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
		if aNaN || bNaN {
			if aNaN && bNaN {
				return false
			}
			if policy == UndefinedFirst {
				return aNaN
			}
			return bNaN
		}
		return a > b
	})
	return out
}

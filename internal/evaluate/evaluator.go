// Package evaluate computes point metrics over paired prediction and
// target series.
package evaluate

import (
	"fmt"
	"math"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// Evaluate computes MSE, directional accuracy, precision and recall over
// length-matched prediction/target series.
//
// Direction uses the three-valued sign function (sign(0) = 0); a
// directional match requires strict sign equality, so a flat prediction
// only matches a flat target. Precision and recall are NaN when their
// denominators are zero (no positive predictions, respectively no
// positive targets).
func Evaluate(predictions, targets []float64) (models.EvalReport, error) {
	if len(predictions) == 0 || len(targets) == 0 {
		return models.EvalReport{}, models.ErrEmptySeries
	}
	if len(predictions) != len(targets) {
		return models.EvalReport{}, fmt.Errorf("%w: %d predictions, %d targets",
			models.ErrLengthMismatch, len(predictions), len(targets))
	}

	var (
		sumSq         float64
		signMatches   int
		truePositives int
		predPositives int
		realPositives int
	)
	for i, p := range predictions {
		t := targets[i]
		diff := p - t
		sumSq += diff * diff

		sp, st := sign(p), sign(t)
		if sp == st {
			signMatches++
		}
		if sp > 0 {
			predPositives++
			if st > 0 {
				truePositives++
			}
		}
		if st > 0 {
			realPositives++
		}
	}

	n := float64(len(predictions))
	return models.EvalReport{
		MSE:       sumSq / n,
		Accuracy:  float64(signMatches) / n,
		Precision: ratio(truePositives, predPositives),
		Recall:    ratio(truePositives, realPositives),
	}, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

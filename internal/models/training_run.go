package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// EvalReport holds point metrics computed on a test window.
// Precision and Recall are NaN when the model produced no positive
// predictions (or the targets contain no positives); callers must check
// with math.IsNaN before comparing.
type EvalReport struct {
	MSE       float64 `json:"mse"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// MarshalJSON encodes undefined metrics as null so a collapsed model
// still produces an encodable run record.
func (e EvalReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MSE       *float64 `json:"mse"`
		Accuracy  *float64 `json:"accuracy"`
		Precision *float64 `json:"precision"`
		Recall    *float64 `json:"recall"`
	}{
		MSE:       nullableFloat(e.MSE),
		Accuracy:  nullableFloat(e.Accuracy),
		Precision: nullableFloat(e.Precision),
		Recall:    nullableFloat(e.Recall),
	})
}

// TrainingRun records a completed training invocation for one instrument.
// It is never mutated after the run finishes.
type TrainingRun struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Symbol      string     `db:"symbol" json:"symbol"`
	TrainLoss   []float64  `db:"train_loss" json:"train_loss"`
	TestLoss    []float64  `db:"test_loss" json:"test_loss"`
	Final       EvalReport `json:"final"`
	Epochs      int        `db:"epochs" json:"epochs"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt time.Time  `db:"completed_at" json:"completed_at"`
}

// Duration returns the wall-clock duration of the run.
func (r *TrainingRun) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// FinalTrainLoss returns the last recorded epoch training loss, or NaN
// when the run had zero epochs.
func (r *TrainingRun) FinalTrainLoss() float64 {
	if len(r.TrainLoss) == 0 {
		return math.NaN()
	}
	return r.TrainLoss[len(r.TrainLoss)-1]
}

// FinalTestLoss returns the last recorded epoch test loss, or NaN when
// the run had zero epochs.
func (r *TrainingRun) FinalTestLoss() float64 {
	if len(r.TestLoss) == 0 {
		return math.NaN()
	}
	return r.TestLoss[len(r.TestLoss)-1]
}


package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// RankingRow pairs an instrument with its risk-adjusted score.
// SharpeRatio is NaN when the score is undefined for the instrument
// (zero-variance return series).
type RankingRow struct {
	Symbol      string  `db:"symbol" json:"symbol"`
	SharpeRatio float64 `db:"sharpe_ratio" json:"sharpe_ratio"`
}

// MarshalJSON encodes an undefined ratio as null; encoding/json rejects
// NaN outright and the ranking table is what presentation layers consume.
func (r RankingRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol      string   `json:"symbol"`
		SharpeRatio *float64 `json:"sharpe_ratio"`
	}{
		Symbol:      r.Symbol,
		SharpeRatio: nullableFloat(r.SharpeRatio),
	})
}

// RankingSnapshot is a persisted ranking table produced by one pipeline run.
type RankingSnapshot struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Rows      []RankingRow `json:"rows"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// nullableFloat returns nil for non-finite values so undefined metrics
// serialize as null instead of failing the whole encode.
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Package datasource fetches daily OHLCV series from external market
// data providers.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// Provider fetches daily candles for one symbol, ascending by date,
// restricted to the inclusive [start, end] range.
type Provider interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// ProviderError wraps failures from a data provider with a stable code.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeInvalidSymbol     = "invalid_symbol"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

var (
	// ErrNoData indicates the provider returned no candles in range.
	ErrNoData = errors.New("no data in requested range")
)

// NewProviderError creates a provider error.
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{Provider: provider, Code: code, Message: message, Err: err}
}

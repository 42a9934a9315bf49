package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/sharpe-scout/internal/models"
)

const forexProviderName = "alpha_vantage_fx"

// ForexProvider fetches daily candles for currency pairs from an
// Alpha Vantage style FX_DAILY endpoint. Symbols are six-letter pairs
// such as "EURUSD". FX series carry no volume; the column is zero.
type ForexProvider struct {
	baseURL string
	apiKey  string
	client  *RateLimitedHTTPClient
}

// NewForexProvider creates a forex provider.
func NewForexProvider(baseURL, apiKey string, client *RateLimitedHTTPClient) *ForexProvider {
	return &ForexProvider{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Name returns the provider name.
func (p *ForexProvider) Name() string {
	return forexProviderName
}

type fxDailyResponse struct {
	Series       map[string]map[string]string `json:"Time Series FX (Daily)"`
	Note         string                       `json:"Note"`
	ErrorMessage string                       `json:"Error Message"`
}

// FetchDaily retrieves the full daily series for the pair and restricts
// it to the inclusive [start, end] range.
func (p *ForexProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	if len(symbol) != 6 {
		return nil, NewProviderError(p.Name(), ErrCodeInvalidSymbol,
			fmt.Sprintf("expected six-letter pair, got %q", symbol), nil)
	}

	query := url.Values{}
	query.Set("function", "FX_DAILY")
	query.Set("from_symbol", symbol[:3])
	query.Set("to_symbol", symbol[3:])
	query.Set("outputsize", "full")
	query.Set("apikey", p.apiKey)

	body, err := fetchJSON(ctx, p.client, p.baseURL, query, p.Name())
	if err != nil {
		return nil, err
	}

	var parsed fxDailyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewProviderError(p.Name(), ErrCodeInvalidData, "malformed response body", err)
	}
	if err := checkProviderMessages(p.Name(), parsed.Note, parsed.ErrorMessage); err != nil {
		return nil, err
	}

	candles, err := parseDailySeries(p.Name(), parsed.Series, fxFieldKeys, start, end)
	if err != nil {
		return nil, err
	}
	return candles, nil
}

// fieldKeys maps candle fields to the provider's numbered JSON keys.
type fieldKeys struct {
	open, high, low, close, volume string
}

var fxFieldKeys = fieldKeys{
	open:  "1. open",
	high:  "2. high",
	low:   "3. low",
	close: "4. close",
}

func fetchJSON(ctx context.Context, client *RateLimitedHTTPClient, baseURL string, query url.Values, provider string) ([]byte, error) {
	resp, err := client.Get(ctx, baseURL+"/query?"+query.Encode())
	if err != nil {
		return nil, NewProviderError(provider, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, NewProviderError(provider, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(provider, ErrCodeNetworkError, "reading body failed", err)
	}
	return body, nil
}

func checkProviderMessages(provider, note, errorMessage string) error {
	if errorMessage != "" {
		return NewProviderError(provider, ErrCodeInvalidSymbol, errorMessage, nil)
	}
	if note != "" {
		// The provider answers 200 with a note when throttling.
		return NewProviderError(provider, ErrCodeRateLimitExceeded, note, nil)
	}
	return nil
}

// parseDailySeries converts the provider's date-keyed map into candles
// sorted ascending by date within [start, end].
func parseDailySeries(provider string, series map[string]map[string]string, keys fieldKeys, start, end time.Time) ([]models.Candle, error) {
	if len(series) == 0 {
		return nil, NewProviderError(provider, ErrCodeInvalidData, "empty series", nil)
	}

	candles := make([]models.Candle, 0, len(series))
	for dateStr, fields := range series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, NewProviderError(provider, ErrCodeInvalidData,
				fmt.Sprintf("bad date key %q", dateStr), err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}

		candle := models.Candle{Date: date}
		if candle.Open, err = parsePrice(fields[keys.open]); err != nil {
			return nil, NewProviderError(provider, ErrCodeInvalidData, "bad open for "+dateStr, err)
		}
		if candle.High, err = parsePrice(fields[keys.high]); err != nil {
			return nil, NewProviderError(provider, ErrCodeInvalidData, "bad high for "+dateStr, err)
		}
		if candle.Low, err = parsePrice(fields[keys.low]); err != nil {
			return nil, NewProviderError(provider, ErrCodeInvalidData, "bad low for "+dateStr, err)
		}
		if candle.Close, err = parsePrice(fields[keys.close]); err != nil {
			return nil, NewProviderError(provider, ErrCodeInvalidData, "bad close for "+dateStr, err)
		}
		if keys.volume != "" {
			if candle.Volume, err = parsePrice(fields[keys.volume]); err != nil {
				return nil, NewProviderError(provider, ErrCodeInvalidData, "bad volume for "+dateStr, err)
			}
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, ErrNoData
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
	return candles, nil
}

// parsePrice goes through decimal to reject garbage like "null" or
// exponent-laden strings before converting to float64.
func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

package datasource

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/yourusername/sharpe-scout/internal/models"
)

const cryptoProviderName = "alpha_vantage_crypto"

// CryptoProvider fetches daily candles for digital currencies from an
// Alpha Vantage style DIGITAL_CURRENCY_DAILY endpoint. Symbols are bare
// asset codes such as "BTC", quoted against the configured market.
type CryptoProvider struct {
	baseURL string
	apiKey  string
	market  string
	client  *RateLimitedHTTPClient
}

// NewCryptoProvider creates a crypto provider. An empty market defaults
// to USD.
func NewCryptoProvider(baseURL, apiKey, market string, client *RateLimitedHTTPClient) *CryptoProvider {
	if market == "" {
		market = "USD"
	}
	return &CryptoProvider{baseURL: baseURL, apiKey: apiKey, market: market, client: client}
}

// Name returns the provider name.
func (p *CryptoProvider) Name() string {
	return cryptoProviderName
}

type cryptoDailyResponse struct {
	Series       map[string]map[string]string `json:"Time Series (Digital Currency Daily)"`
	Note         string                       `json:"Note"`
	ErrorMessage string                       `json:"Error Message"`
}

var cryptoFieldKeys = fieldKeys{
	open:   "1. open",
	high:   "2. high",
	low:    "3. low",
	close:  "4. close",
	volume: "5. volume",
}

// FetchDaily retrieves the full daily series for the asset and restricts
// it to the inclusive [start, end] range.
func (p *CryptoProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	query := url.Values{}
	query.Set("function", "DIGITAL_CURRENCY_DAILY")
	query.Set("symbol", symbol)
	query.Set("market", p.market)
	query.Set("apikey", p.apiKey)

	body, err := fetchJSON(ctx, p.client, p.baseURL, query, p.Name())
	if err != nil {
		return nil, err
	}

	var parsed cryptoDailyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewProviderError(p.Name(), ErrCodeInvalidData, "malformed response body", err)
	}
	if err := checkProviderMessages(p.Name(), parsed.Note, parsed.ErrorMessage); err != nil {
		return nil, err
	}

	return parseDailySeries(p.Name(), parsed.Series, cryptoFieldKeys, start, end)
}

package datasource

import (
	"time"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// Factory selects the provider implementation per instrument: crypto
// instruments go to the digital currency endpoint, everything else to
// the FX endpoint.
type Factory struct {
	forex  Provider
	crypto Provider
}

// NewFactory builds both providers over a shared HTTP client. A
// positive cacheTTL wraps each provider in a response cache.
func NewFactory(baseURL, apiKey, cryptoMarket string, client *RateLimitedHTTPClient, cacheTTL time.Duration) *Factory {
	var forex Provider = NewForexProvider(baseURL, apiKey, client)
	var crypto Provider = NewCryptoProvider(baseURL, apiKey, cryptoMarket, client)
	if cacheTTL > 0 {
		forex = NewCachingProvider(forex, cacheTTL)
		crypto = NewCachingProvider(crypto, cacheTTL)
	}
	return &Factory{forex: forex, crypto: crypto}
}

// NewFactoryWithProviders builds a factory over pre-built providers.
func NewFactoryWithProviders(forex, crypto Provider) *Factory {
	return &Factory{forex: forex, crypto: crypto}
}

// ForInstrument returns the provider feeding the given instrument.
func (f *Factory) ForInstrument(inst models.Instrument) Provider {
	if inst.Crypto {
		return f.crypto
	}
	return f.forex
}

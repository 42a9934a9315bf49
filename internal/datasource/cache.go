package datasource

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// CachingProvider decorates a Provider with an in-memory TTL cache so
// repeated pipeline runs within the TTL reuse fetched series instead of
// burning provider request quota.
type CachingProvider struct {
	inner Provider
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachingProvider wraps a provider with a cache of the given TTL.
func NewCachingProvider(inner Provider, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Name returns the wrapped provider's name.
func (p *CachingProvider) Name() string {
	return p.inner.Name()
}

// FetchDaily serves from cache when possible, keyed by symbol and range.
func (p *CachingProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	key := fmt.Sprintf("%s:%s:%s:%s", p.inner.Name(), symbol,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	if cached, found := p.cache.Get(key); found {
		if candles, ok := cached.([]models.Candle); ok {
			return candles, nil
		}
	}

	candles, err := p.inner.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, candles, p.ttl)
	return candles, nil
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
)

// RatesMemoryCache keeps rate snapshots in process for ttl.
type RatesMemoryCache struct {
	rates map[string]cachedRates
	ttl   time.Duration
	mu    sync.RWMutex
	now   func() time.Time
}

type cachedRates struct {
	rates     domain.Rates
	timestamp time.Time
}

func NewRatesMemoryCache(ttl time.Duration) *RatesMemoryCache {
	return &RatesMemoryCache{
		rates: make(map[string]cachedRates),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *RatesMemoryCache) GetRates(_ context.Context, currencyCode string) (*domain.Rates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.rates[currencyCode]
	if !exists || c.now().Sub(cached.timestamp) > c.ttl {
		return nil, false
	}
	rates := cached.rates
	return &rates, true
}

func (c *RatesMemoryCache) SetRates(_ context.Context, rates domain.Rates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates[rates.CurrencyCode] = cachedRates{
		rates:     rates,
		timestamp: c.now(),
	}
}

func (c *RatesMemoryCache) Invalidate(_ context.Context, currencyCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.rates, currencyCode)
}

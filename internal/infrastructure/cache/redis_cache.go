package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const ratesKeyPrefix = "discoin:rates:"

// RatesRedisCache shares rate snapshots between service instances. Redis
// errors degrade to cache misses; the registry stays the source of truth.
type RatesRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatesRedisCache(addr, password string, db int, ttl time.Duration) *RatesRedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RatesRedisCache{client: client, ttl: ttl}
}

// Ensure RatesRedisCache implements the RatesCache interface
var _ domain.RatesCache = (*RatesRedisCache)(nil)

func ratesKey(currencyCode string) string {
	return ratesKeyPrefix + currencyCode
}

func (c *RatesRedisCache) GetRates(ctx context.Context, currencyCode string) (*domain.Rates, bool) {
	data, err := c.client.Get(ctx, ratesKey(currencyCode)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("rates cache read failed", "currency", currencyCode, "error", err)
		}
		return nil, false
	}

	var rates domain.Rates
	if err := json.Unmarshal(data, &rates); err != nil {
		slog.Warn("rates cache entry malformed", "currency", currencyCode, "error", err)
		return nil, false
	}
	return &rates, true
}

func (c *RatesRedisCache) SetRates(ctx context.Context, rates domain.Rates) {
	data, err := json.Marshal(rates)
	if err != nil {
		slog.Warn("failed to marshal rates", "currency", rates.CurrencyCode, "error", err)
		return
	}
	if err := c.client.Set(ctx, ratesKey(rates.CurrencyCode), data, c.ttl).Err(); err != nil {
		slog.Warn("rates cache write failed", "currency", rates.CurrencyCode, "error", err)
	}
}

func (c *RatesRedisCache) Invalidate(ctx context.Context, currencyCode string) {
	if err := c.client.Del(ctx, ratesKey(currencyCode)).Err(); err != nil {
		slog.Warn("rates cache invalidation failed", "currency", currencyCode, "error", err)
	}
}

func (c *RatesRedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RatesRedisCache) Close() error {
	return c.client.Close()
}

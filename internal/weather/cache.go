package weather

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/AnshRaj112/clima-backend/internal/observability"
)

// DefaultCacheTTL is how long provider answers are reused.
const DefaultCacheTTL = 10 * time.Minute

// Cache stores JSON-serializable values. services.CacheService satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

var _ Provider = (*CachedProvider)(nil)

// CachedProvider wraps a Provider with a shared cache. Cache failures are
// logged and treated as misses.
type CachedProvider struct {
	inner   Provider
	cache   Cache
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner Provider, cache Cache, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *CachedProvider) Current(ctx context.Context) (Current, error) {
	const key = "weather:current"
	var cur Current
	if c.lookup(ctx, key, &cur) {
		return cur, nil
	}
	cur, err := c.inner.Current(ctx)
	if err != nil {
		return cur, err
	}
	c.store(ctx, key, cur)
	return cur, nil
}

func (c *CachedProvider) Hourly(ctx context.Context, hours int) ([]HourlyForecast, error) {
	key := "weather:hourly:" + strconv.Itoa(hours)
	var forecast []HourlyForecast
	if c.lookup(ctx, key, &forecast) {
		return forecast, nil
	}
	forecast, err := c.inner.Hourly(ctx, hours)
	if err != nil {
		return nil, err
	}
	// Empty forecasts are not cached so the next request retries the provider.
	if len(forecast) > 0 {
		c.store(ctx, key, forecast)
	}
	return forecast, nil
}

func (c *CachedProvider) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		c.logger.Warn("weather cache read failed", "key", key, "error", err)
		hit = false
	}
	if c.metrics != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		c.metrics.WeatherCache.WithLabelValues(result).Inc()
	}
	return hit
}

func (c *CachedProvider) store(ctx context.Context, key string, value any) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("weather cache write failed", "key", key, "error", err)
	}
}

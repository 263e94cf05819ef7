package geocoding

import (
	"context"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/ports"
	"strings"

	"go.uber.org/zap"
)

// CachedGeocoder consults a persistent cache for single-best lookups
// before delegating to the wrapped geocoder. Multi-result (suggestion)
// queries always go to the provider. Cache failures never fail a lookup.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
	log   *zap.Logger
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache, log *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache, log: logger.OrNop(log)}
}

// CacheKey builds the normalized key for a single-best query.
func CacheKey(q ports.GeocodeQuery) string {
	return strings.ToLower(q.CountryCodes) + "|" + strings.ToLower(normalize(q.Text))
}

func (c *CachedGeocoder) Search(ctx context.Context, q ports.GeocodeQuery) ([]ports.GeocodeResult, error) {
	if c.cache == nil || q.Limit != 1 {
		return c.next.Search(ctx, q)
	}

	key := CacheKey(q)
	hit, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("geocode_cache_read_failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		metrics.GeocodeCacheHitsTotal.Inc()
		hit.Cached = true
		return []ports.GeocodeResult{hit}, nil
	}
	metrics.GeocodeCacheMissesTotal.Inc()

	results, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		if err := c.cache.Put(ctx, key, results[0]); err != nil {
			c.log.Warn("geocode_cache_write_failed", zap.String("key", key), zap.Error(err))
		}
	}

	return results, nil
}

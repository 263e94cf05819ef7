package routing

import (
	"context"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/ports"

	"go.uber.org/zap"
)

// CachedRouter stores successful route geometry in a persistent cache.
// "No route" answers are not cached.
type CachedRouter struct {
	next  ports.RouteProvider
	cache ports.RouteCache
	log   *zap.Logger
}

func NewCachedRouter(next ports.RouteProvider, cache ports.RouteCache, log *zap.Logger) *CachedRouter {
	return &CachedRouter{next: next, cache: cache, log: logger.OrNop(log)}
}

// RouteKey rounds endpoints to ~1 m so nearby repeats share an entry.
func RouteKey(origin, destination domain.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f;%.5f,%.5f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}

func (c *CachedRouter) Route(ctx context.Context, origin, destination domain.Coordinate) (domain.RoutePath, error) {
	if c.cache == nil {
		return c.next.Route(ctx, origin, destination)
	}

	key := RouteKey(origin, destination)
	path, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("route_cache_read_failed", zap.String("key", key), zap.Error(err))
	}
	if ok && !path.Empty() {
		return path, nil
	}

	path, err = c.next.Route(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, path); err != nil {
		c.log.Warn("route_cache_write_failed", zap.String("key", key), zap.Error(err))
	}

	return path, nil
}

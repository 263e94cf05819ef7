package ports

import (
	"context"
	"nearby-pro-service/internal/domain"
)

// Persistent store mapping normalized geocode queries to their best match.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (GeocodeResult, bool, error)
	Put(ctx context.Context, key string, result GeocodeResult) error
}

// Persistent store for route geometry keyed by endpoint pair.
type RouteCache interface {
	Get(ctx context.Context, key string) (domain.RoutePath, bool, error)
	Put(ctx context.Context, key string, path domain.RoutePath) error
}

package ports

import (
	"context"
	"nearby-pro-service/internal/domain"
)

// Contract for retrieving a driving path between two coordinates.
type RouteProvider interface {
	// Return the path in (lat, lng) order, or domain.ErrNoRoute when the provider has none.
	Route(ctx context.Context, origin, destination domain.Coordinate) (domain.RoutePath, error)
}

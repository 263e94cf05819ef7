package routing

import (
	"context"
	"nearby-pro-service/internal/domain"
)

// MockRouter returns a straight two-point path between the endpoints,
// or Err when set. Useful for offline runs and tests.
type MockRouter struct {
	Err error
}

func (m *MockRouter) Route(ctx context.Context, origin, destination domain.Coordinate) (domain.RoutePath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.RoutePath{origin, destination}, nil
}

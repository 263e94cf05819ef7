package services

import (
	"context"
	"math"
	"nearby-pro-service/internal/adapters/geocoding"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/geo"
	"nearby-pro-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ahmedabad = domain.Coordinate{Lat: 23.0225, Lng: 72.5714}

// north returns the point km kilometres due north of c.
func north(c domain.Coordinate, km float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + km/geo.EarthRadiusKm*180/math.Pi, Lng: c.Lng}
}

func testResolverConfig() ResolverConfig {
	return ResolverConfig{
		RegionHint:    "Ahmedabad",
		CountryCodes:  "in",
		CityCenter:    ahmedabad,
		JitterDeg:     0.025,
		Seed:          42,
		LookupTimeout: time.Second,
	}
}

func place(query string, c domain.Coordinate) geocoding.MockPlace {
	return geocoding.MockPlace{
		Query:   query,
		Results: []ports.GeocodeResult{{Label: query, Coordinate: c}},
	}
}

func newTestResolver(t *testing.T, g ports.Geocoder) *AddressResolver {
	t.Helper()
	r, err := NewAddressResolver(g, testResolverConfig(), nil)
	require.NoError(t, err)
	return r
}

// delayRouter returns a straight path after a per-destination delay.
type delayRouter struct {
	mu     sync.Mutex
	delays map[domain.Coordinate]time.Duration
	calls  int
}

func (d *delayRouter) Route(ctx context.Context, origin, destination domain.Coordinate) (domain.RoutePath, error) {
	d.mu.Lock()
	d.calls++
	delay := d.delays[destination]
	d.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return domain.RoutePath{origin, destination}, nil
}

func (d *delayRouter) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

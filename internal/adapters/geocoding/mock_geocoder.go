package geocoding

import (
	"context"
	"fmt"
	"nearby-pro-service/internal/ports"
	"strings"
	"sync"
)

type MockPlace struct {
	Query   string
	Results []ports.GeocodeResult
	Err     error
}

// MockGeocoder answers from a fixed table keyed by normalized query text.
// Unknown queries return no match. It records every query it receives.
type MockGeocoder struct {
	m map[string]MockPlace

	mu    sync.Mutex
	calls []ports.GeocodeQuery
}

func NewMockGeocoder(places []MockPlace) *MockGeocoder {
	m := make(map[string]MockPlace, len(places))
	for _, p := range places {
		m[mockKey(p.Query)] = p
	}
	return &MockGeocoder{m: m}
}

func mockKey(s string) string { return strings.ToLower(normalize(s)) }

func (g *MockGeocoder) Search(ctx context.Context, q ports.GeocodeQuery) ([]ports.GeocodeResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, q)
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := g.m[mockKey(q.Text)]
	if !ok {
		return []ports.GeocodeResult{}, nil
	}
	if p.Err != nil {
		return nil, fmt.Errorf("mock geocoder %q: %w", q.Text, p.Err)
	}

	limit := q.Limit
	if limit <= 0 || limit > len(p.Results) {
		limit = len(p.Results)
	}
	out := make([]ports.GeocodeResult, limit)
	copy(out, p.Results[:limit])
	return out, nil
}

// Calls returns the queries received so far, in order.
func (g *MockGeocoder) Calls() []ports.GeocodeQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ports.GeocodeQuery, len(g.calls))
	copy(out, g.calls)
	return out
}

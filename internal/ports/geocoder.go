package ports

import (
	"context"
	"nearby-pro-service/internal/domain"
)

// Parameters for a forward geocoding lookup.
type GeocodeQuery struct {
	Text           string
	CountryCodes   string
	Limit          int
	AddressDetails bool
}

// One geocoding match.
type GeocodeResult struct {
	Label      string            `json:"label"`
	Coordinate domain.Coordinate `json:"coordinate"`
	// Cached is set when the match came from a cache, not the provider.
	Cached bool `json:"-"`
}

// Contract for resolving free text into ordered coordinate matches.
type Geocoder interface {
	// Return matches best-first. An empty slice with a nil error means no match.
	Search(ctx context.Context, q GeocodeQuery) ([]GeocodeResult, error)
}

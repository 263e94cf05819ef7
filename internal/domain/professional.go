package domain

// Represents a professional from the external roster.
// Professionals are immutable input; Attributes carries roster fields
// this core does not interpret (specialty, rating, ...).
type Professional struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	RawAddress string            `json:"address"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// How a professional's coordinate was obtained.
type ResolutionSource string

const (
	SourceGeocoded ResolutionSource = "geocoded"
	SourceFallback ResolutionSource = "fallback"
)

// Outcome of resolving one address.
type Resolution struct {
	Coordinate Coordinate
	Source     ResolutionSource
	// Cached reports that no provider call was made.
	Cached bool
}

// A Professional paired with the coordinate it resolved to.
// Created once per professional per session.
type ResolvedProfessional struct {
	Professional
	Coordinate Coordinate       `json:"coordinate"`
	Source     ResolutionSource `json:"resolution_source"`
}

// A ResolvedProfessional ranked against a reference coordinate.
// Rank is 1-based; DistanceKm has one decimal of precision.
type RankedProfessional struct {
	ResolvedProfessional
	DistanceKm float64 `json:"distance_km"`
	Rank       int     `json:"rank"`
}

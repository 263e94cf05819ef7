package domain

// Autocomplete candidate for a partially typed place.
type Suggestion struct {
	Label      string     `json:"label"`
	Coordinate Coordinate `json:"coordinate"`
}

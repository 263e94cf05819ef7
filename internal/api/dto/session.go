package dto

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SelectRequest struct {
	ProfessionalID string `json:"professional_id"`
}

type QueryRequest struct {
	Q string `json:"q"`
}

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ProfessionalResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Address          string             `json:"address"`
	Attributes       map[string]string  `json:"attributes,omitempty"`
	Coordinate       CoordinateResponse `json:"coordinate"`
	ResolutionSource string             `json:"resolution_source"`
	DistanceKm       *float64           `json:"distance_km,omitempty"`
	Rank             int                `json:"rank,omitempty"`
}

type SessionStateResponse struct {
	SessionID      string                 `json:"session_id"`
	Phase          string                 `json:"phase"`
	Reference      *CoordinateResponse    `json:"reference,omitempty"`
	ReferenceLabel string                 `json:"reference_label,omitempty"`
	Resolving      bool                   `json:"resolving"`
	Resolved       int                    `json:"resolved"`
	RosterTotal    int                    `json:"roster_total"`
	Professionals  []ProfessionalResponse `json:"professionals"`
	SelectedID     string                 `json:"selected_id,omitempty"`
	Route          []CoordinateResponse   `json:"route"`
	Error          string                 `json:"error,omitempty"`
}

type SuggestionResponse struct {
	Label      string             `json:"label"`
	Coordinate CoordinateResponse `json:"coordinate"`
}

type ListSuggestionsResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

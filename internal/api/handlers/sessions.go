package handlers

import (
	"errors"
	"nearby-pro-service/internal/api/dto"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/services"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SessionHandler exposes the locator session flow over HTTP.
type SessionHandler struct {
	Registry *services.SessionRegistry
	Log      *zap.Logger
}

func (h *SessionHandler) log() *zap.Logger { return logger.OrNop(h.Log) }

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s, err := h.Registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

// Create starts a session and begins resolving the roster in the background.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	s, err := h.Registry.Create(r.Context())
	if err != nil {
		h.log().Error("create_session_failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateSessionResponse{SessionID: s.ID})
}

// Item returns (GET) or ends (DELETE) one session.
func (h *SessionHandler) Item(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		writeJSON(w, r, http.StatusOK, toStateResponse(s.ID, s.State()))

	case http.MethodDelete:
		if err := h.Registry.Close(r.PathValue("id")); err != nil {
			writeError(w, r, http.StatusNotFound, "session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, "GET, DELETE")
	}
}

// Search sets the session's reference location from a free-text query.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}

	st, err := s.Search(r.Context(), req.Query)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrLocationNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, r, status, domain.UserMessage(err))
		return
	}

	writeJSON(w, r, http.StatusOK, toStateResponse(s.ID, st))
}

// Select chooses a ranked professional; the route arrives asynchronously.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st, err := s.Select(strings.TrimSpace(req.ProfessionalID))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, domain.ErrNoReference):
		writeError(w, r, http.StatusConflict, "search for a location first")
		return
	case errors.Is(err, domain.ErrProfessionalNotFound):
		writeError(w, r, http.StatusNotFound, "professional not found")
		return
	case err != nil:
		h.log().Error("select_failed", zap.String("session_id", s.ID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusAccepted, toStateResponse(s.ID, st))
}

// Query feeds one keystroke to the debounced suggestion searcher.
func (h *SessionHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.Type(req.Q)
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *SessionHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	list := s.Suggestions()
	res := dto.ListSuggestionsResponse{Suggestions: make([]dto.SuggestionResponse, 0, len(list))}
	for _, sg := range list {
		res.Suggestions = append(res.Suggestions, dto.SuggestionResponse{
			Label:      sg.Label,
			Coordinate: toCoordinate(sg.Coordinate),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toCoordinate(c domain.Coordinate) dto.CoordinateResponse {
	return dto.CoordinateResponse{Lat: c.Lat, Lng: c.Lng}
}

func toProfessional(rp domain.ResolvedProfessional) dto.ProfessionalResponse {
	return dto.ProfessionalResponse{
		ID:               rp.ID,
		Name:             rp.Name,
		Address:          rp.RawAddress,
		Attributes:       rp.Attributes,
		Coordinate:       toCoordinate(rp.Coordinate),
		ResolutionSource: string(rp.Source),
	}
}

// Professionals are listed ranked once a reference exists, else in roster order.
func toStateResponse(id string, st services.SessionState) dto.SessionStateResponse {
	res := dto.SessionStateResponse{
		SessionID:      id,
		Phase:          string(st.Phase),
		ReferenceLabel: st.ReferenceLabel,
		Resolving:      st.Resolving,
		Resolved:       len(st.Resolved),
		RosterTotal:    st.RosterTotal,
		SelectedID:     st.SelectedID,
		Route:          make([]dto.CoordinateResponse, 0, len(st.Route)),
		Error:          st.LastError,
	}

	if st.Reference != nil {
		ref := toCoordinate(*st.Reference)
		res.Reference = &ref

		res.Professionals = make([]dto.ProfessionalResponse, 0, len(st.Ranked))
		for _, rp := range st.Ranked {
			p := toProfessional(rp.ResolvedProfessional)
			d := rp.DistanceKm
			p.DistanceKm = &d
			p.Rank = rp.Rank
			res.Professionals = append(res.Professionals, p)
		}
	} else {
		res.Professionals = make([]dto.ProfessionalResponse, 0, len(st.Resolved))
		for _, rp := range st.Resolved {
			res.Professionals = append(res.Professionals, toProfessional(rp))
		}
	}

	for _, c := range st.Route {
		res.Route = append(res.Route, toCoordinate(c))
	}

	return res
}

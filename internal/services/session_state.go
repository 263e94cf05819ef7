package services

import (
	"fmt"
	"nearby-pro-service/internal/domain"
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseSearching      Phase = "searching"
	PhaseLocated        Phase = "located"
	PhaseRouteRequested Phase = "route_requested"
	PhaseRouteReady     Phase = "route_ready"
)

// SessionState is the whole observable state of one locator session.
// It is advanced only through Reduce.
//
// SearchSeq and RouteSeq are the tokens of the latest search and route
// request. Completions carrying an older token are ignored.
type SessionState struct {
	Phase          Phase
	Reference      *domain.Coordinate
	ReferenceLabel string
	Resolved       []domain.ResolvedProfessional
	RosterTotal    int
	Resolving      bool
	Ranked         []domain.RankedProfessional
	Route          domain.RoutePath
	SelectedID     string
	LastError      string

	SearchSeq uint64
	RouteSeq  uint64

	// Phase to report once the in-flight search settles or fails.
	settledPhase Phase
}

func NewSessionState() SessionState {
	return SessionState{
		Phase:    PhaseIdle,
		Resolved: []domain.ResolvedProfessional{},
		Ranked:   []domain.RankedProfessional{},
		Route:    domain.RoutePath{},
	}
}

type Event interface{ isEvent() }

type (
	RosterLoaded struct{ Total int }

	BatchProgressed struct {
		Resolved []domain.ResolvedProfessional
		Done     bool
	}

	SearchSubmitted struct{}

	SearchSucceeded struct {
		Seq        uint64
		Coordinate domain.Coordinate
		Label      string
	}

	SearchFailed struct {
		Seq uint64
		Err error
	}

	ProfessionalSelected struct{ ID string }

	RouteArrived struct {
		Seq  uint64
		Path domain.RoutePath
	}
)

func (RosterLoaded) isEvent()         {}
func (BatchProgressed) isEvent()      {}
func (SearchSubmitted) isEvent()      {}
func (SearchSucceeded) isEvent()      {}
func (SearchFailed) isEvent()         {}
func (ProfessionalSelected) isEvent() {}
func (RouteArrived) isEvent()         {}

// Reduce returns the state that follows s after e. It never mutates s.
// A rejected event returns s unchanged with an error.
func Reduce(s SessionState, e Event) (SessionState, error) {
	n := s.clone()

	switch ev := e.(type) {
	case RosterLoaded:
		n.RosterTotal = ev.Total
		n.Resolving = ev.Total > 0

	case BatchProgressed:
		n.Resolved = cloneResolved(ev.Resolved)
		n.Resolving = !ev.Done
		if n.Reference != nil {
			n.Ranked = Rank(*n.Reference, n.Resolved)
		}

	case SearchSubmitted:
		if n.Phase != PhaseSearching {
			n.settledPhase = n.Phase
		}
		n.Phase = PhaseSearching
		n.SearchSeq++
		n.LastError = ""

	case SearchSucceeded:
		if ev.Seq != n.SearchSeq || n.Phase != PhaseSearching {
			return s, nil
		}
		ref := ev.Coordinate
		n.Reference = &ref
		n.ReferenceLabel = ev.Label
		n.Ranked = Rank(ref, n.Resolved)
		n.Route = domain.RoutePath{}
		n.SelectedID = ""
		n.RouteSeq++
		n.Phase = PhaseLocated
		n.settledPhase = ""

	case SearchFailed:
		if ev.Seq != n.SearchSeq || n.Phase != PhaseSearching {
			return s, nil
		}
		n.Phase = n.settledPhase
		n.settledPhase = ""
		n.LastError = domain.UserMessage(ev.Err)

	case ProfessionalSelected:
		if n.Reference == nil {
			return s, fmt.Errorf("select %q: %w", ev.ID, domain.ErrNoReference)
		}
		if !n.hasRanked(ev.ID) {
			return s, fmt.Errorf("select %q: %w", ev.ID, domain.ErrProfessionalNotFound)
		}
		n.SelectedID = ev.ID
		n.Route = domain.RoutePath{}
		n.RouteSeq++
		n.setSettled(PhaseRouteRequested)

	case RouteArrived:
		if ev.Seq != n.RouteSeq || n.settled() != PhaseRouteRequested {
			return s, nil
		}
		n.Route = ev.Path.Clone()
		n.setSettled(PhaseRouteReady)

	default:
		return s, fmt.Errorf("reduce: unknown event %T", e)
	}

	return n, nil
}

// settled is the phase the session is in, looking through an in-flight search.
func (s SessionState) settled() Phase {
	if s.Phase == PhaseSearching {
		return s.settledPhase
	}
	return s.Phase
}

func (s *SessionState) setSettled(p Phase) {
	if s.Phase == PhaseSearching {
		s.settledPhase = p
		return
	}
	s.Phase = p
}

func (s SessionState) hasRanked(id string) bool {
	for _, rp := range s.Ranked {
		if rp.ID == id {
			return true
		}
	}
	return false
}

// Selected returns the ranked entry for SelectedID.
func (s SessionState) Selected() (domain.RankedProfessional, bool) {
	if s.SelectedID == "" {
		return domain.RankedProfessional{}, false
	}
	for _, rp := range s.Ranked {
		if rp.ID == s.SelectedID {
			return rp, true
		}
	}
	return domain.RankedProfessional{}, false
}

func (s SessionState) clone() SessionState {
	n := s
	if s.Reference != nil {
		ref := *s.Reference
		n.Reference = &ref
	}
	n.Resolved = cloneResolved(s.Resolved)
	n.Ranked = make([]domain.RankedProfessional, len(s.Ranked))
	copy(n.Ranked, s.Ranked)
	n.Route = s.Route.Clone()
	return n
}

func cloneResolved(in []domain.ResolvedProfessional) []domain.ResolvedProfessional {
	out := make([]domain.ResolvedProfessional, len(in))
	copy(out, in)
	return out
}

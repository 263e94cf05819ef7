package services

import (
	"context"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/ports"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Resolver *AddressResolver
	Batch    *BatchResolver
	Routes   *RouteFetcher
	Suggest  ports.Geocoder
	Config   SuggestionConfig
}

func (d SessionDeps) validate() error {
	switch {
	case d.Resolver == nil:
		return errors.New("session deps: resolver is nil")
	case d.Batch == nil:
		return errors.New("session deps: batch resolver is nil")
	case d.Routes == nil:
		return errors.New("session deps: route fetcher is nil")
	case d.Suggest == nil:
		return errors.New("session deps: suggestion geocoder is nil")
	}
	return nil
}

// Session runs the search, rank, select and route flow for one user while
// the roster resolves in the background. Every state change goes through
// Reduce under mu; no lock is held across a provider call.
type Session struct {
	ID string

	deps    SessionDeps
	suggest *SuggestionSearcher
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   SessionState
	changed chan struct{}
	started bool
	closed  bool
}

func NewSession(id string, deps SessionDeps, log *zap.Logger) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log).With(zap.String("session_id", id))

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:      id,
		deps:    deps,
		suggest: NewSuggestionSearcher(deps.Suggest, deps.Config, log),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		state:   NewSessionState(),
		changed: make(chan struct{}),
	}, nil
}

// Start begins resolving roster in the background. It may be called once.
func (s *Session) Start(roster []domain.Professional) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closedErr()
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session %s: already started", s.ID)
	}
	s.started = true
	// Add under mu: Close sets closed before it waits.
	s.wg.Add(1)
	s.mu.Unlock()

	updates := s.deps.Batch.Run(s.ctx, roster)

	// Total counts only entries that will be resolved.
	total := 0
	for _, p := range roster {
		if strings.TrimSpace(p.RawAddress) != "" {
			total++
		}
	}
	s.apply(RosterLoaded{Total: total})

	go func() {
		defer s.wg.Done()
		for u := range updates {
			s.apply(BatchProgressed{Resolved: u.Resolved, Done: u.Done})
		}
	}()
	return nil
}

// Search resolves query to the session's reference location and re-ranks.
// On failure the previous location, ranking and route are kept and the
// returned error maps to a user message with domain.UserMessage.
func (s *Session) Search(ctx context.Context, query string) (SessionState, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.State(), fmt.Errorf("search: empty query: %w", domain.ErrLocationNotFound)
	}

	if s.isClosed() {
		return s.State(), s.closedErr()
	}

	st := s.apply(SearchSubmitted{})
	seq := st.SearchSeq
	s.suggest.Clear()

	res, err := s.deps.Resolver.Lookup(ctx, s.deps.Resolver.QueryFor(query))
	if err != nil {
		s.log.Info("search_failed", zap.String("query", query), zap.Error(err))
		return s.apply(SearchFailed{Seq: seq, Err: err}), err
	}

	s.log.Info("search_located",
		zap.String("query", query),
		zap.Stringer("coordinate", res.Coordinate),
	)
	return s.apply(SearchSucceeded{Seq: seq, Coordinate: res.Coordinate, Label: res.Label}), nil
}

// Select marks a ranked professional and fetches a route to them in the
// background. Only the latest selection's route is ever applied.
func (s *Session) Select(id string) (SessionState, error) {
	s.mu.Lock()
	if s.closed {
		st := s.state.clone()
		s.mu.Unlock()
		return st, s.closedErr()
	}
	next, err := Reduce(s.state, ProfessionalSelected{ID: id})
	if err != nil {
		st := s.state.clone()
		s.mu.Unlock()
		return st, err
	}
	s.commitLocked(next)
	seq := next.RouteSeq
	origin := *next.Reference
	sel, _ := next.Selected()
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		path := s.deps.Routes.Fetch(s.ctx, origin, sel.Coordinate)
		s.apply(RouteArrived{Seq: seq, Path: path})
	}()

	return next.clone(), nil
}

// Type feeds one keystroke to the suggestion searcher.
func (s *Session) Type(q string) { s.suggest.Input(q) }

func (s *Session) Suggestions() []domain.Suggestion { return s.suggest.Suggestions() }

// State returns a snapshot of the session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// WaitFor blocks until cond holds for the session state or ctx is done.
func (s *Session) WaitFor(ctx context.Context, cond func(SessionState) bool) (SessionState, error) {
	for {
		s.mu.Lock()
		st := s.state
		ch := s.changed
		if cond(st) {
			s.mu.Unlock()
			return st.clone(), nil
		}
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}
}

// Close cancels background work and waits for it to stop.
// Start, Search and Select fail with domain.ErrSessionNotFound afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.suggest.Close()
	s.wg.Wait()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) closedErr() error {
	return fmt.Errorf("session %q: closed: %w", s.ID, domain.ErrSessionNotFound)
}

func (s *Session) apply(e Event) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, e)
	if err != nil {
		s.log.Warn("session_event_rejected", zap.String("event", fmt.Sprintf("%T", e)), zap.Error(err))
		return s.state.clone()
	}
	s.commitLocked(next)
	return next.clone()
}

func (s *Session) commitLocked(next SessionState) {
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
}

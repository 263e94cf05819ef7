package services

import (
	"context"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/ports"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRegistry owns the live sessions of the process.
type SessionRegistry struct {
	roster ports.RosterRepository
	deps   SessionDeps
	log    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry(roster ports.RosterRepository, deps SessionDeps, log *zap.Logger) (*SessionRegistry, error) {
	if roster == nil {
		return nil, errors.New("session registry: roster repository is nil")
	}
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	return &SessionRegistry{
		roster:   roster,
		deps:     deps,
		log:      logger.OrNop(log),
		sessions: map[string]*Session{},
	}, nil
}

// Create loads the roster once and starts a new session resolving it.
func (r *SessionRegistry) Create(ctx context.Context) (*Session, error) {
	pros, err := r.roster.ListProfessionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: list professionals: %w", err)
	}

	id := uuid.NewString()
	s, err := NewSession(id, r.deps, r.log)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.Start(pros); err != nil {
		s.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))

	r.log.Info("session_created", zap.String("session_id", id), zap.Int("roster", len(pros)))
	return s, nil
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// Close ends the session and drops it from the registry.
func (r *SessionRegistry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	metrics.ActiveSessions.Set(float64(n))

	s.Close()
	r.log.Info("session_closed", zap.String("session_id", id))
	return nil
}

func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()
	metrics.ActiveSessions.Set(0)

	for _, s := range all {
		s.Close()
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

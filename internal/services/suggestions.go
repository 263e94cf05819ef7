package services

import (
	"context"
	"errors"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/ports"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

type SuggestionConfig struct {
	CountryCodes  string
	MinChars      int
	Debounce      time.Duration
	Limit         int
	LookupTimeout time.Duration
}

func (c SuggestionConfig) withDefaults() SuggestionConfig {
	if c.MinChars <= 0 {
		c.MinChars = 3
	}
	if c.Debounce < 0 {
		c.Debounce = 0
	}
	if c.Limit <= 0 {
		c.Limit = 5
	}
	return c
}

// SuggestionSearcher turns keystrokes into debounced autocomplete lookups.
//
// Every Input bumps a sequence number. A lookup fires only once its input
// has been the latest for the debounce period, and its response is applied
// only if no newer Input arrived in the meantime. Superseded in-flight
// lookups are also cancelled.
type SuggestionSearcher struct {
	geocoder ports.Geocoder
	cfg      SuggestionConfig
	log      *zap.Logger
	onUpdate func([]domain.Suggestion)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	current []domain.Suggestion
	closed  bool
}

func NewSuggestionSearcher(geocoder ports.Geocoder, cfg SuggestionConfig, log *zap.Logger) *SuggestionSearcher {
	return &SuggestionSearcher{
		geocoder: geocoder,
		cfg:      cfg.withDefaults(),
		log:      logger.OrNop(log),
		current:  []domain.Suggestion{},
	}
}

// OnUpdate registers fn to receive each applied suggestion list. fn runs
// on the searcher's goroutines and must not call back into the searcher.
func (s *SuggestionSearcher) OnUpdate(fn func([]domain.Suggestion)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Input records the latest query text.
func (s *SuggestionSearcher) Input(q string) {
	q = strings.TrimSpace(q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	seq := s.seq
	s.stopLocked()

	if utf8.RuneCountInString(q) < s.cfg.MinChars {
		s.applyLocked([]domain.Suggestion{})
		return
	}

	s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.lookup(seq, q) })
}

// Suggestions returns a copy of the visible suggestion list.
func (s *SuggestionSearcher) Suggestions() []domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Suggestion, len(s.current))
	copy(out, s.current)
	return out
}

// Clear empties the list and invalidates pending lookups, e.g. after a selection.
func (s *SuggestionSearcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.stopLocked()
	s.applyLocked([]domain.Suggestion{})
}

// Close stops pending work. Later Input calls are ignored.
func (s *SuggestionSearcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	s.stopLocked()
}

func (s *SuggestionSearcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SuggestionSearcher) applyLocked(list []domain.Suggestion) {
	s.current = list
	if s.onUpdate != nil {
		snap := make([]domain.Suggestion, len(list))
		copy(snap, list)
		s.onUpdate(snap)
	}
}

func (s *SuggestionSearcher) lookup(seq uint64, q string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.LookupTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.cfg.LookupTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	metrics.SuggestLookupsTotal.Inc()
	results, err := s.geocoder.Search(ctx, ports.GeocodeQuery{
		Text:           q,
		CountryCodes:   s.cfg.CountryCodes,
		Limit:          s.cfg.Limit,
		AddressDetails: true,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.SuggestStaleTotal.Inc()
		s.log.Debug("suggest_stale_discarded", zap.String("query", q), zap.Uint64("seq", seq))
		return
	}
	s.cancel = nil

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("suggest_lookup_failed", zap.String("query", q), zap.Error(err))
		}
		s.applyLocked([]domain.Suggestion{})
		return
	}

	list := make([]domain.Suggestion, 0, min(len(results), s.cfg.Limit))
	for _, r := range results {
		if len(list) == s.cfg.Limit {
			break
		}
		list = append(list, domain.Suggestion{Label: r.Label, Coordinate: r.Coordinate})
	}
	s.applyLocked(list)
}

package services

import (
	"context"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Resolver is the single-address step driven by BatchResolver.
type Resolver interface {
	Resolve(ctx context.Context, address string) domain.Resolution
}

// BatchUpdate is one emission of a roster resolution run. Resolved is a
// snapshot owned by the receiver. The last update has Done set.
type BatchUpdate struct {
	Resolved []domain.ResolvedProfessional
	Total    int
	Done     bool
}

// BatchResolver resolves a roster strictly one address at a time, waiting
// Delay after each provider call before starting the next. Lookups served
// from a cache do not wait.
type BatchResolver struct {
	resolver Resolver
	delay    time.Duration
	log      *zap.Logger
}

func NewBatchResolver(resolver Resolver, delay time.Duration, log *zap.Logger) *BatchResolver {
	return &BatchResolver{resolver: resolver, delay: delay, log: logger.OrNop(log)}
}

// Run starts resolving roster in the background and returns the update
// stream. Entries with an empty address are skipped. Repeated addresses
// within the run reuse the first resolution and do not wait. The channel
// is closed after the Done update or when ctx is cancelled.
func (b *BatchResolver) Run(ctx context.Context, roster []domain.Professional) <-chan BatchUpdate {
	out := make(chan BatchUpdate)

	pending := make([]domain.Professional, 0, len(roster))
	for _, p := range roster {
		if strings.TrimSpace(p.RawAddress) == "" {
			b.log.Debug("roster_entry_skipped", zap.String("id", p.ID))
			continue
		}
		pending = append(pending, p)
	}

	go func() {
		defer close(out)

		total := len(pending)
		resolved := make([]domain.ResolvedProfessional, 0, total)
		memo := make(map[string]domain.Resolution, total)

		emit := func(done bool) bool {
			snap := make([]domain.ResolvedProfessional, len(resolved))
			copy(snap, resolved)
			select {
			case out <- BatchUpdate{Resolved: snap, Total: total, Done: done}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for i, p := range pending {
			key := strings.ToLower(strings.Join(strings.Fields(p.RawAddress), " "))
			res, seen := memo[key]
			if !seen {
				res = b.resolver.Resolve(ctx, p.RawAddress)
				memo[key] = res
			}

			resolved = append(resolved, domain.ResolvedProfessional{
				Professional: p,
				Coordinate:   res.Coordinate,
				Source:       res.Source,
			})
			if !emit(false) {
				return
			}

			if seen || res.Cached || i == total-1 || b.delay <= 0 {
				continue
			}
			timer := time.NewTimer(b.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		b.log.Info("roster_resolved", zap.Int("total", total))
		emit(true)
	}()

	return out
}

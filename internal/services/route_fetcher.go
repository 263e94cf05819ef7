package services

import (
	"context"
	"errors"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

// RouteFetcher wraps a route provider so that any failure yields an empty
// path rather than an error.
type RouteFetcher struct {
	provider ports.RouteProvider
	timeout  time.Duration
	log      *zap.Logger
}

func NewRouteFetcher(provider ports.RouteProvider, timeout time.Duration, log *zap.Logger) *RouteFetcher {
	return &RouteFetcher{provider: provider, timeout: timeout, log: logger.OrNop(log)}
}

func (f *RouteFetcher) Fetch(ctx context.Context, origin, destination domain.Coordinate) domain.RoutePath {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	t0 := time.Now()
	path, err := f.provider.Route(ctx, origin, destination)
	metrics.RouteDurationMs.Observe(float64(time.Since(t0).Milliseconds()))

	switch {
	case errors.Is(err, domain.ErrNoRoute):
		metrics.RouteFetchesTotal.WithLabelValues("no_route").Inc()
		f.log.Info("route_not_found", zap.Stringer("origin", origin), zap.Stringer("destination", destination))
		return domain.RoutePath{}
	case err != nil:
		metrics.RouteFetchesTotal.WithLabelValues("error").Inc()
		f.log.Warn("route_fetch_failed",
			zap.Stringer("origin", origin),
			zap.Stringer("destination", destination),
			zap.Error(err),
		)
		return domain.RoutePath{}
	}

	metrics.RouteFetchesTotal.WithLabelValues("ok").Inc()
	return path.Clone()
}

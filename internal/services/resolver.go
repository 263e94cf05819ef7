package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/ports"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ResolverConfig struct {
	RegionHint    string
	CountryCodes  string
	CityCenter    domain.Coordinate
	JitterDeg     float64
	Seed          int64 // 0 seeds from the clock
	LookupTimeout time.Duration
}

// AddressResolver turns free-text addresses into coordinates. Resolve
// always yields a plottable coordinate; Lookup reports failures to the caller.
type AddressResolver struct {
	geocoder ports.Geocoder
	cfg      ResolverConfig
	log      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAddressResolver(geocoder ports.Geocoder, cfg ResolverConfig, log *zap.Logger) (*AddressResolver, error) {
	if geocoder == nil {
		return nil, errors.New("address resolver: geocoder is nil")
	}
	if !cfg.CityCenter.Valid() {
		return nil, fmt.Errorf("address resolver: invalid city center %s", cfg.CityCenter)
	}
	if cfg.JitterDeg < 0 {
		return nil, fmt.Errorf("address resolver: negative jitter %v", cfg.JitterDeg)
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &AddressResolver{
		geocoder: geocoder,
		cfg:      cfg,
		log:      logger.OrNop(log),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// QueryFor appends the region hint unless the address already mentions it.
func (r *AddressResolver) QueryFor(address string) string {
	address = strings.TrimSpace(address)
	hint := strings.TrimSpace(r.cfg.RegionHint)
	if hint == "" || strings.Contains(strings.ToLower(address), strings.ToLower(hint)) {
		return address
	}
	if address == "" {
		return hint
	}
	return address + ", " + hint
}

// Lookup issues one country-scoped single-best geocoding request for text.
// It returns domain.ErrLocationNotFound when the provider has no match.
func (r *AddressResolver) Lookup(ctx context.Context, text string) (ports.GeocodeResult, error) {
	if r.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.LookupTimeout)
		defer cancel()
	}

	results, err := r.geocoder.Search(ctx, ports.GeocodeQuery{
		Text:         text,
		CountryCodes: r.cfg.CountryCodes,
		Limit:        1,
	})
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("lookup %q: %w", text, err)
	}
	if len(results) == 0 || !results[0].Coordinate.Valid() {
		return ports.GeocodeResult{}, fmt.Errorf("lookup %q: %w", text, domain.ErrLocationNotFound)
	}

	return results[0], nil
}

// Resolve geocodes address with the region hint applied. On no match or a
// transport error it returns a jittered city-center coordinate instead.
func (r *AddressResolver) Resolve(ctx context.Context, address string) domain.Resolution {
	res, err := r.Lookup(ctx, r.QueryFor(address))
	if err == nil {
		return domain.Resolution{Coordinate: res.Coordinate, Source: domain.SourceGeocoded, Cached: res.Cached}
	}

	metrics.FallbackTotal.Inc()
	c := r.Fallback()
	r.log.Info("geocode_fallback",
		zap.String("address", address),
		zap.Stringer("coordinate", c),
		zap.Error(err),
	)
	return domain.Resolution{Coordinate: c, Source: domain.SourceFallback}
}

// Fallback returns the city center offset by up to ±JitterDeg on each axis.
func (r *AddressResolver) Fallback() domain.Coordinate {
	r.mu.Lock()
	dLat := (r.rng.Float64()*2 - 1) * r.cfg.JitterDeg
	dLng := (r.rng.Float64()*2 - 1) * r.cfg.JitterDeg
	r.mu.Unlock()

	c := domain.Coordinate{
		Lat: clamp(r.cfg.CityCenter.Lat+dLat, -90, 90),
		Lng: clamp(r.cfg.CityCenter.Lng+dLng, -180, 180),
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

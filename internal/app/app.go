// Package app assembles the locator from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"nearby-pro-service/internal/adapters/cache"
	"nearby-pro-service/internal/adapters/geocoding"
	"nearby-pro-service/internal/adapters/repositories"
	"nearby-pro-service/internal/adapters/routing"
	"nearby-pro-service/internal/config"
	"nearby-pro-service/internal/platform/db"
	"nearby-pro-service/internal/platform/httpx"
	"nearby-pro-service/internal/platform/logger"
	"nearby-pro-service/internal/ports"
	"nearby-pro-service/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired collaborators and the resources to release on Close.
type App struct {
	Config   config.Config
	Registry *services.SessionRegistry
	Resolver *services.AddressResolver
	Geocoder ports.Geocoder
	Roster   ports.RosterRepository

	db    *sql.DB
	redis *redis.Client
	log   *zap.Logger
}

// New wires providers, caches and the roster source. Postgres backs the
// roster and caches when DATABASE_URL is set; Redis, when configured, takes
// over the geocode cache; otherwise geocodes are cached in memory.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	a := &App{Config: cfg, log: log}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.db = conn
	}
	if cfg.RedisAddr != "" {
		a.redis = cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("app: ping redis %s: %w", cfg.RedisAddr, err)
		}
	}

	nominatim, err := geocoding.NewNominatimGeocoder(
		cfg.GeocoderBaseURL,
		httpx.NewClient(cfg.HTTPTimeout, cfg.GeocoderUserAgent),
		cfg.GeocoderRPS,
		cfg.GeocoderBurst,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	a.Geocoder = geocoding.NewCachedGeocoder(nominatim, a.geocodeCache(), log)

	osrm, err := routing.NewOSRMRouter(cfg.RouterBaseURL, httpx.NewClient(cfg.HTTPTimeout, cfg.GeocoderUserAgent))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	var router ports.RouteProvider = osrm
	if a.db != nil {
		router = routing.NewCachedRouter(osrm, cache.NewSQLRouteCache(a.db), log)
	}

	if a.db != nil {
		a.Roster = repositories.NewPostgresRosterRepository(a.db)
	} else {
		a.Roster = repositories.NewJSONRosterRepository(cfg.RosterPath)
	}

	a.Resolver, err = services.NewAddressResolver(a.Geocoder, services.ResolverConfig{
		RegionHint:    cfg.RegionHint,
		CountryCodes:  cfg.CountryCodes,
		CityCenter:    cfg.CityCenter,
		JitterDeg:     cfg.JitterDeg,
		Seed:          cfg.FallbackSeed,
		LookupTimeout: cfg.LookupTimeout,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a.Registry, err = services.NewSessionRegistry(a.Roster, services.SessionDeps{
		Resolver: a.Resolver,
		Batch:    services.NewBatchResolver(a.Resolver, cfg.BatchDelay, log),
		Routes:   services.NewRouteFetcher(router, cfg.LookupTimeout, log),
		Suggest:  a.Geocoder,
		Config: services.SuggestionConfig{
			CountryCodes:  cfg.CountryCodes,
			MinChars:      cfg.SuggestMinChars,
			Debounce:      cfg.SuggestDebounce,
			Limit:         cfg.SuggestLimit,
			LookupTimeout: cfg.LookupTimeout,
		},
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	log.Info("app_wired",
		zap.Bool("postgres", a.db != nil),
		zap.Bool("redis", a.redis != nil),
		zap.String("geocoder", cfg.GeocoderBaseURL),
		zap.String("router", cfg.RouterBaseURL),
	)
	return a, nil
}

func (a *App) geocodeCache() ports.GeocodeCache {
	switch {
	case a.redis != nil:
		return cache.NewRedisGeocodeCache(a.redis, a.Config.GeocodeCacheTTL)
	case a.db != nil:
		return cache.NewSQLGeocodeCache(a.db, a.Config.GeocodeCacheTTL)
	default:
		return cache.NewMemoryGeocodeCache(a.Config.GeocodeCacheTTL)
	}
}

// Close ends all sessions and releases connections.
func (a *App) Close() error {
	if a.Registry != nil {
		a.Registry.CloseAll()
	}

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

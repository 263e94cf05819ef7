// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisPass   string
	RosterPath  string

	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderRPS       float64
	GeocoderBurst     int
	RouterBaseURL     string

	CountryCodes string
	RegionHint   string
	CityCenter   domain.Coordinate
	JitterDeg    float64
	FallbackSeed int64

	BatchDelay      time.Duration
	SuggestDebounce time.Duration
	SuggestMinChars int
	SuggestLimit    int

	HTTPTimeout     time.Duration
	LookupTimeout   time.Duration
	GeocodeCacheTTL time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDotEnv reads an optional .env file into the process environment.
// It reports whether a file was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads Config from the environment. It returns every invalid value
// in one joined error.
func Load() (Config, error) {
	p := parser{}

	cfg := Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", ""),
		RedisPass:   Get("REDIS_PASS", ""),
		RosterPath:  Get("ROSTER_PATH", "data/seeds/professionals.json"),

		GeocoderBaseURL:   Get("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: Get("GEOCODER_USER_AGENT", "nearby-pro-service/1.0"),
		GeocoderRPS:       p.float("GEOCODER_RPS", 1),
		GeocoderBurst:     p.int("GEOCODER_BURST", 1),
		RouterBaseURL:     Get("ROUTER_BASE_URL", "https://router.project-osrm.org"),

		CountryCodes: Get("COUNTRY_CODES", "in"),
		RegionHint:   Get("REGION_HINT", "Ahmedabad"),
		CityCenter: domain.Coordinate{
			Lat: p.float("CITY_CENTER_LAT", 23.0225),
			Lng: p.float("CITY_CENTER_LNG", 72.5714),
		},
		JitterDeg:    p.float("FALLBACK_JITTER_DEG", 0.025),
		FallbackSeed: int64(p.int("FALLBACK_SEED", 0)),

		BatchDelay:      p.duration("BATCH_DELAY", 1100*time.Millisecond),
		SuggestDebounce: p.duration("SUGGEST_DEBOUNCE", 300*time.Millisecond),
		SuggestMinChars: p.int("SUGGEST_MIN_CHARS", 3),
		SuggestLimit:    p.int("SUGGEST_LIMIT", 5),

		HTTPTimeout:     p.duration("HTTP_TIMEOUT", 10*time.Second),
		LookupTimeout:   p.duration("LOOKUP_TIMEOUT", 8*time.Second),
		GeocodeCacheTTL: p.duration("GEOCODE_CACHE_TTL", 720*time.Hour),

		LogLevel:  Get("LOG_LEVEL", "info"),
		LogFormat: Get("LOG_FORMAT", "json"),
	}

	if !cfg.CityCenter.Valid() {
		p.fail("CITY_CENTER_LAT/CITY_CENTER_LNG: %s is not a valid coordinate", cfg.CityCenter)
	}
	if cfg.JitterDeg <= 0 || cfg.JitterDeg > 1 {
		p.fail("FALLBACK_JITTER_DEG: %v must be within (0, 1]", cfg.JitterDeg)
	}
	if cfg.BatchDelay < 0 {
		p.fail("BATCH_DELAY: must not be negative")
	}
	if cfg.SuggestMinChars < 1 {
		p.fail("SUGGEST_MIN_CHARS: must be at least 1")
	}
	if cfg.SuggestLimit < 1 {
		p.fail("SUGGEST_LIMIT: must be at least 1")
	}
	if cfg.HTTPTimeout <= 0 || cfg.LookupTimeout <= 0 {
		p.fail("HTTP_TIMEOUT/LOOKUP_TIMEOUT: must be positive")
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

type parser struct {
	errs []error
}

func (p *parser) fail(format string, args ...any) {
	p.errs = append(p.errs, fmt.Errorf(format, args...))
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail("%s: invalid number %q", key, raw)
		return fallback
	}
	return v
}

func (p *parser) int(key string, fallback int) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail("%s: invalid integer %q", key, raw)
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail("%s: invalid duration %q", key, raw)
		return fallback
	}
	return v
}

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/obs"
	"nearby-pro-service/internal/ports"
	"strings"
	"time"
)

// SQLGeocodeCache is a Postgres-backed cache mapping normalized queries to
// their best geocode hit. Entries older than TTL are treated as misses.
type SQLGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLGeocodeCache(db *sql.DB, ttl time.Duration) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, TTL: ttl}
}

func (s *SQLGeocodeCache) Get(ctx context.Context, key string) (_ ports.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return ports.GeocodeResult{}, false, errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.GeocodeResult{}, false, nil
	}

	q := `
	SELECT label, lat, lng, updated_at
	FROM geocode_cache
	WHERE query_key = $1;
	`

	var (
		label     string
		lat, lng  float64
		updatedAt time.Time
	)
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&label, &lat, &lng, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.GeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.GeocodeResult{}, false, fmt.Errorf("get geocode cache key=%q: %w", key, err)
	}

	if s.TTL > 0 && time.Since(updatedAt) > s.TTL {
		return ports.GeocodeResult{}, false, nil
	}

	return ports.GeocodeResult{
		Label:      label,
		Coordinate: domain.Coordinate{Lat: lat, Lng: lng},
	}, true, nil
}

func (s *SQLGeocodeCache) Put(ctx context.Context, key string, r ports.GeocodeResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geocode cache: empty key")
	}
	if !r.Coordinate.Valid() {
		return fmt.Errorf("insert geocode cache key=%q: invalid coordinate %s", key, r.Coordinate)
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (query_key, label, lat, lng, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (query_key) DO UPDATE
	SET label = EXCLUDED.label,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		updated_at = EXCLUDED.updated_at;
	`, key, r.Label, r.Coordinate.Lat, r.Coordinate.Lng)
	if err != nil {
		return fmt.Errorf("insert geocode cache key=%q: %w", key, err)
	}

	return nil
}

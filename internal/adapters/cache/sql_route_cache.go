package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/obs"
	"strings"
)

// SQLRouteCache is a Postgres-backed cache for origin->destination route
// geometry. Paths are stored as a JSON array of {lat,lng} points.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ domain.RoutePath, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	var raw []byte
	err = s.DB.QueryRowContext(ctx, `
	SELECT geometry
	FROM route_cache
	WHERE route_key = $1;
	`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var path domain.RoutePath
	if err := json.Unmarshal(raw, &path); err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: decode geometry: %w", key, err)
	}

	return path, !path.Empty(), nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, path domain.RoutePath) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}
	if path.Empty() {
		return nil
	}

	raw, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: encode geometry: %w", key, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert route cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO route_cache (route_key, geometry, points)
	VALUES ($1, $2, $3)
	ON CONFLICT (route_key) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		points = EXCLUDED.points;
	`, key, raw, len(path)); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert route cache commit: %w", err)
	}

	return nil
}

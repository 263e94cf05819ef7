package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema for the roster and provider caches.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createProfessionalsQuery := `
	CREATE TABLE IF NOT EXISTS professionals (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		attributes JSONB NOT NULL DEFAULT '{}'::jsonb
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query_key TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		route_key TEXT PRIMARY KEY,
		geometry JSONB NOT NULL,
		points INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_professionals_position
	ON professionals(position);
	`

	statements := []string{
		createProfessionalsQuery,
		createGeocodeCacheQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the professionals table from a roster JSON file.
// Existing rows with the same id are replaced; roster order is preserved.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed professionals: DB is nil")
	}

	pros, err := LoadRosterFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed professionals: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed professionals: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO professionals (id, position, name, address, attributes)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET position = EXCLUDED.position,
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		attributes = EXCLUDED.attributes;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed professionals: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range pros {
		attrs, err := encodeAttributes(p.Attributes)
		if err != nil {
			return fmt.Errorf("seed professionals: id=%q: %w", p.ID, err)
		}
		if _, err := stmt.Exec(p.ID, i, p.Name, p.RawAddress, attrs); err != nil {
			return fmt.Errorf("seed professionals: insert id=%q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed professionals: commit tx: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/obs"
)

// Postgres-backed implementation of the RosterRepository port.
type PostgresRosterRepository struct{ DB *sql.DB }

func NewPostgresRosterRepository(db *sql.DB) *PostgresRosterRepository {
	return &PostgresRosterRepository{DB: db}
}

// Return all professionals in roster order.
func (s *PostgresRosterRepository) ListProfessionals(ctx context.Context) (_ []domain.Professional, err error) {
	defer obs.Time(ctx, "roster.ListProfessionals")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres roster repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		address,
		attributes
	FROM professionals
	ORDER BY position, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list professionals: query professionals table: %w", err)
	}
	defer rows.Close()

	pros := make([]domain.Professional, 0, 64)
	for rows.Next() {
		var (
			p     domain.Professional
			attrs []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.RawAddress, &attrs); err != nil {
			return nil, fmt.Errorf("list professionals: scan row: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
				return nil, fmt.Errorf("list professionals: decode attributes id=%q: %w", p.ID, err)
			}
			if len(p.Attributes) == 0 {
				p.Attributes = nil
			}
		}
		pros = append(pros, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list professionals: row iteration: %w", err)
	}

	return pros, nil
}

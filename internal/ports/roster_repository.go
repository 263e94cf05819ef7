package ports

import (
	"context"
	"nearby-pro-service/internal/domain"
)

// Port: a boundary for retrieving the professional roster from a data source.
type RosterRepository interface {
	// Retrieve all professionals in roster order.
	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
}

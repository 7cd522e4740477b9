package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// TripRepository defines the read operations for scheduled trips.
type TripRepository interface {
	// GetByID retrieves a scheduled trip by ID.
	GetByID(ctx context.Context, id string) (*domain.ScheduledTrip, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL scheduled trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// GetByID retrieves a scheduled trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledTrip, error) {
	query := `
		SELECT id, user_name, driver_id, driver_name, origin_address, destination_address,
			scheduled_date, estimated_price, status
		FROM scheduled_trips WHERE id = $1
	`

	var (
		trip           domain.ScheduledTrip
		driverID       sql.NullString
		driverName     sql.NullString
		estimatedPrice sql.NullInt64
	)

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.UserName,
		&driverID,
		&driverName,
		&trip.OriginAddress,
		&trip.DestinationAddress,
		&trip.ScheduledDate,
		&estimatedPrice,
		&trip.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.DriverName = driverName.String
	trip.EstimatedPrice = estimatedPrice.Int64

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"fleetpay/internal/repository"
)

var tripColumnNames = []string{
	"id", "user_name", "driver_id", "driver_name", "origin_address", "destination_address",
	"scheduled_date", "estimated_price", "status",
}

func TestTripRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	when := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM scheduled_trips WHERE id").
		WithArgs("trip-1").
		WillReturnRows(sqlmock.NewRows(tripColumnNames).
			AddRow("trip-1", "Lucia", nil, "Mario", "Centro", "Aeropuerto", when, int64(35000), "scheduled"))

	trip, err := NewTripRepository(db).GetByID(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.DriverName != "Mario" || trip.DriverID != "" {
		t.Errorf("unexpected driver fields: %+v", trip)
	}
	if trip.EstimatedPrice != 35000 {
		t.Errorf("expected estimated price 35000, got %d", trip.EstimatedPrice)
	}
	if !trip.ScheduledDate.Equal(when) {
		t.Errorf("expected %v, got %v", when, trip.ScheduledDate)
	}
}

func TestTripRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM scheduled_trips").WillReturnRows(sqlmock.NewRows(tripColumnNames))

	_, err = NewTripRepository(db).GetByID(context.Background(), "nope")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

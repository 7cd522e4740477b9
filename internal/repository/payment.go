package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency key.
	// Returns nil if no payment exists with the given key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// GetOpenByTripID retrieves the most recent pending or succeeded payment for a trip.
	// Returns nil if the trip has none.
	GetOpenByTripID(ctx context.Context, tripID string) (*domain.Payment, error)

	// List retrieves payments matching the filter, newest first.
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)

	// Summarize aggregates payments matching the filter. Limit is ignored.
	Summarize(ctx context.Context, filter domain.PaymentFilter) (domain.PaymentStats, error)

	// DriverNames retrieves the distinct driver names that appear on payments, sorted.
	DriverNames(ctx context.Context) ([]string, error)

	// UpdateStatus moves a pending payment to status.
	// Returns ErrPaymentFinalized if the payment is no longer pending.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}

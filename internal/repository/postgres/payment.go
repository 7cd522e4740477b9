package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

const paymentColumns = `id, trip_id, gross_amount, commission_percentage, commission_amount, driver_amount,
		currency, status, user_name, user_email, driver_name, description,
		checkout_session_id, checkout_url, idempotency_key, created_at, updated_at`

const defaultListLimit = 100

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		nullString(payment.TripID),
		payment.GrossAmount,
		payment.CommissionPercentage,
		payment.CommissionAmount,
		payment.DriverAmount,
		payment.Currency,
		payment.Status,
		payment.UserName,
		nullString(payment.UserEmail),
		nullString(payment.DriverName),
		payment.Description,
		nullString(payment.CheckoutSessionID),
		nullString(payment.CheckoutURL),
		nullString(payment.IdempotencyKey),
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return mapWriteError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// GetByIdempotencyKey retrieves a payment by its idempotency key.
// Returns nil if no payment exists with the given key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// GetOpenByTripID retrieves the most recent pending or succeeded payment for a trip.
// Returns nil if the trip has none.
func (r *PaymentRepository) GetOpenByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE trip_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query,
		tripID, domain.PaymentStatusPending, domain.PaymentStatusSucceeded))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// List retrieves payments matching the filter, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	where, args := buildPaymentWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	args = append(args, limit)
	query := `SELECT ` + paymentColumns + ` FROM payments` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// Summarize aggregates payments matching the filter. Money totals count succeeded payments only.
func (r *PaymentRepository) Summarize(ctx context.Context, filter domain.PaymentFilter) (domain.PaymentStats, error) {
	where, args := buildPaymentWhere(filter)

	query := `
		SELECT
			COALESCE(SUM(gross_amount) FILTER (WHERE status = 'succeeded'), 0),
			COALESCE(SUM(commission_amount) FILTER (WHERE status = 'succeeded'), 0),
			COALESCE(SUM(driver_amount) FILTER (WHERE status = 'succeeded'), 0),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'succeeded'),
			COUNT(*)
		FROM payments` + where

	var stats domain.PaymentStats
	err := r.q.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalAmount,
		&stats.TotalCommission,
		&stats.TotalDriverAmount,
		&stats.PendingPayments,
		&stats.CompletedPayments,
		&stats.TotalPayments,
	)
	if err != nil {
		return domain.PaymentStats{}, err
	}

	return stats, nil
}

// DriverNames retrieves the distinct driver names that appear on payments, sorted.
func (r *PaymentRepository) DriverNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT driver_name FROM payments
		WHERE driver_name IS NOT NULL AND driver_name <> ''
		ORDER BY driver_name
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// UpdateStatus moves a pending payment to status.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `
		UPDATE payments SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, status, id, domain.PaymentStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	// Nothing updated: either the payment is missing or it is no longer pending.
	var current string
	err = r.q.QueryRowContext(ctx, `SELECT status FROM payments WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	return repository.ErrPaymentFinalized
}

// buildPaymentWhere returns the WHERE clause and positional args for a filter.
func buildPaymentWhere(filter domain.PaymentFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DriverName != "" {
		args = append(args, filter.DriverName)
		conditions = append(conditions, fmt.Sprintf("driver_name = $%d", len(args)))
	}
	if filter.TripID != "" {
		args = append(args, filter.TripID)
		conditions = append(conditions, fmt.Sprintf("trip_id = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment           domain.Payment
		tripID            sql.NullString
		userEmail         sql.NullString
		driverName        sql.NullString
		checkoutSessionID sql.NullString
		checkoutURL       sql.NullString
		idempotencyKey    sql.NullString
	)

	err := row.Scan(
		&payment.ID,
		&tripID,
		&payment.GrossAmount,
		&payment.CommissionPercentage,
		&payment.CommissionAmount,
		&payment.DriverAmount,
		&payment.Currency,
		&payment.Status,
		&payment.UserName,
		&userEmail,
		&driverName,
		&payment.Description,
		&checkoutSessionID,
		&checkoutURL,
		&idempotencyKey,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.TripID = tripID.String
	payment.UserEmail = userEmail.String
	payment.DriverName = driverName.String
	payment.CheckoutSessionID = checkoutSessionID.String
	payment.CheckoutURL = checkoutURL.String
	payment.IdempotencyKey = idempotencyKey.String

	return &payment, nil
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)

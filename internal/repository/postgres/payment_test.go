package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

var paymentColumnNames = []string{
	"id", "trip_id", "gross_amount", "commission_percentage", "commission_amount", "driver_amount",
	"currency", "status", "user_name", "user_email", "driver_name", "description",
	"checkout_session_id", "checkout_url", "idempotency_key", "created_at", "updated_at",
}

func newMockPaymentRepo(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPaymentRepository(db), mock
}

func samplePayment() *domain.Payment {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Payment{
		ID:                   "pay-1",
		TripID:               "trip-1",
		GrossAmount:          999,
		CommissionPercentage: decimal.NewFromInt(15),
		CommissionAmount:     150,
		DriverAmount:         849,
		Currency:             "mxn",
		Status:               domain.PaymentStatusPending,
		UserName:             "Lucia",
		Description:          domain.DefaultPaymentDescription,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestPaymentRepository_Create(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	p := samplePayment()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.TripID, p.GrossAmount, sqlmock.AnyArg(), p.CommissionAmount, p.DriverAmount,
			p.Currency, "pending", p.UserName, nil, nil, p.Description,
			nil, nil, nil, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentRepository_Create_DuplicateKey(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), samplePayment())
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPaymentRepository_GetByID(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = $1")).
		WithArgs("pay-1").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames).AddRow(
			"pay-1", nil, int64(1000), "15.00", int64(150), int64(850),
			"mxn", "succeeded", "Lucia", "lucia@example.com", "Mario", "Airport run",
			"cs_123", "https://checkout.example/cs_123", nil, now, now,
		))

	p, err := repo.GetByID(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TripID != "" {
		t.Errorf("expected empty trip id, got %q", p.TripID)
	}
	if !p.CommissionPercentage.Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected 15%%, got %s", p.CommissionPercentage)
	}
	if p.Status != domain.PaymentStatusSucceeded {
		t.Errorf("expected succeeded, got %s", p.Status)
	}
	if p.DriverName != "Mario" || p.UserEmail != "lucia@example.com" {
		t.Errorf("unexpected nullable fields: %+v", p)
	}
	if !p.Reconciled() {
		t.Error("expected payment to reconcile")
	}
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectQuery("FROM payments WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentRepository_GetByIdempotencyKey_Missing(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectQuery("WHERE idempotency_key").
		WithArgs("key-1").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames))

	p, err := repo.GetByIdempotencyKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil payment, got %+v", p)
	}
}

func TestPaymentRepository_GetOpenByTripID(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("WHERE trip_id = \\$1 AND status IN").
		WithArgs("trip-1", "pending", "succeeded").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames).AddRow(
			"pay-2", "trip-1", int64(500), "10", int64(50), int64(450),
			"mxn", "pending", "Lucia", nil, nil, "Trip payment",
			nil, nil, nil, now, now,
		))

	p, err := repo.GetOpenByTripID(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.ID != "pay-2" || p.TripID != "trip-1" {
		t.Fatalf("unexpected payment: %+v", p)
	}
}

func TestPaymentRepository_List_WithFilter(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND driver_name = $2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("succeeded", "Mario", 100).
		WillReturnRows(sqlmock.NewRows(paymentColumnNames).
			AddRow("pay-1", nil, int64(1000), "15", int64(150), int64(850),
				"mxn", "succeeded", "Lucia", nil, "Mario", "Trip payment", nil, nil, nil, now, now).
			AddRow("pay-2", nil, int64(200), "15", int64(30), int64(170),
				"mxn", "succeeded", "Pedro", nil, "Mario", "Trip payment", nil, nil, nil, now, now))

	payments, err := repo.List(context.Background(), domain.PaymentFilter{
		Status:     domain.PaymentStatusSucceeded,
		DriverName: "Mario",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentRepository_List_NoFilter(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments ORDER BY created_at DESC LIMIT $1")).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows(paymentColumnNames))

	payments, err := repo.List(context.Background(), domain.PaymentFilter{Limit: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected no payments, got %d", len(payments))
	}
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "pending payment is updated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE payments SET status").
					WithArgs("succeeded", "pay-1", "pending").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "terminal payment is not touched",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE payments SET status").
					WithArgs("succeeded", "pay-1", "pending").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT status FROM payments").
					WithArgs("pay-1").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("canceled"))
			},
			wantErr: repository.ErrPaymentFinalized,
		},
		{
			name: "missing payment",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE payments SET status").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT status FROM payments").
					WillReturnRows(sqlmock.NewRows([]string{"status"}))
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockPaymentRepo(t)
			tt.setup(mock)

			err := repo.UpdateStatus(context.Background(), "pay-1", domain.PaymentStatusSucceeded)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPaymentRepository_Summarize(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE driver_name = $1")).
		WithArgs("Mario").
		WillReturnRows(sqlmock.NewRows([]string{"gross", "commission", "driver", "pending", "completed", "total"}).
			AddRow(int64(1999), int64(300), int64(1699), int64(1), int64(2), int64(4)))

	stats, err := repo.Summarize(context.Background(), domain.PaymentFilter{DriverName: "Mario", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.PaymentStats{
		TotalAmount:       1999,
		TotalCommission:   300,
		TotalDriverAmount: 1699,
		PendingPayments:   1,
		CompletedPayments: 2,
		TotalPayments:     4,
	}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestPaymentRepository_DriverNames(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)

	mock.ExpectQuery("SELECT DISTINCT driver_name FROM payments").
		WillReturnRows(sqlmock.NewRows([]string{"driver_name"}).AddRow("Ana").AddRow("Mario"))

	names, err := repo.DriverNames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "Ana" || names[1] != "Mario" {
		t.Fatalf("unexpected names: %v", names)
	}
}

package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

func earningsPayment(id string, status domain.PaymentStatus, driverAmount int64, created time.Time) *domain.Payment {
	return &domain.Payment{
		ID:           id,
		GrossAmount:  driverAmount + 100,
		DriverAmount: driverAmount,
		DriverName:   "Luis",
		UserName:     "Ana",
		Description:  "Trip payment",
		Status:       status,
		CreatedAt:    created,
	}
}

func TestComputeEarnings_Totals(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	payments := []*domain.Payment{
		earningsPayment("p1", domain.PaymentStatusSucceeded, 1000, time.Date(2026, 5, 18, 9, 0, 0, 0, time.UTC)),
		earningsPayment("p2", domain.PaymentStatusSucceeded, 500, time.Date(2026, 5, 18, 15, 0, 0, 0, time.UTC)),
		earningsPayment("p3", domain.PaymentStatusSucceeded, 1000, time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)),
		earningsPayment("p4", domain.PaymentStatusPending, 700, time.Date(2026, 5, 19, 9, 0, 0, 0, time.UTC)),
		earningsPayment("p5", domain.PaymentStatusFailed, 900, time.Date(2026, 5, 19, 9, 0, 0, 0, time.UTC)),
	}

	got := service.ComputeEarnings("Luis", payments, service.EarningsQuery{Range: domain.EarningsRangeAll}, now)

	if got.TotalEarnings != 2500 {
		t.Errorf("expected total 2500, got %d", got.TotalEarnings)
	}
	if got.PendingEarnings != 700 {
		t.Errorf("expected pending 700, got %d", got.PendingEarnings)
	}
	if got.TotalTrips != 3 {
		t.Errorf("expected 3 trips, got %d", got.TotalTrips)
	}
	if got.AveragePerTrip != 833 {
		t.Errorf("expected average 833, got %d", got.AveragePerTrip)
	}
	if got.ThisMonthEarnings != 1500 || got.LastMonthEarnings != 1000 {
		t.Errorf("expected months 1500/1000, got %d/%d", got.ThisMonthEarnings, got.LastMonthEarnings)
	}
	if got.MonthlyChange != 50 {
		t.Errorf("expected +50%%, got %v", got.MonthlyChange)
	}

	want := []domain.DailyEarnings{{Date: "2026-04-10", Amount: 1000}, {Date: "2026-05-18", Amount: 1500}}
	if len(got.Daily) != len(want) {
		t.Fatalf("expected %d days, got %v", len(want), got.Daily)
	}
	for i := range want {
		if got.Daily[i] != want[i] {
			t.Errorf("day %d: expected %+v, got %+v", i, want[i], got.Daily[i])
		}
	}
}

func TestComputeEarnings_RangeAndSearch(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	old := earningsPayment("old", domain.PaymentStatusSucceeded, 300, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	recent := earningsPayment("recent", domain.PaymentStatusSucceeded, 400, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	current := earningsPayment("current", domain.PaymentStatusSucceeded, 500, time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC))
	current.UserName = "Bruno"
	current.Description = "Airport run"
	payments := []*domain.Payment{old, recent, current}

	testCases := []struct {
		name  string
		query service.EarningsQuery
		want  int64
	}{
		{"all", service.EarningsQuery{Range: domain.EarningsRangeAll}, 1200},
		{"month", service.EarningsQuery{Range: domain.EarningsRangeMonth}, 500},
		{"three months", service.EarningsQuery{Range: domain.EarningsRangeThreeMonths}, 900},
		{"search user", service.EarningsQuery{Range: domain.EarningsRangeAll, Search: "bru"}, 500},
		{"search description", service.EarningsQuery{Range: domain.EarningsRangeAll, Search: "AIRPORT"}, 500},
		{"search no match", service.EarningsQuery{Range: domain.EarningsRangeAll, Search: "zzz"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.ComputeEarnings("Luis", payments, tc.query, now)
			if got.TotalEarnings != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got.TotalEarnings)
			}
		})
	}
}

func TestComputeEarnings_NoLastMonthMeansNoChange(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	payments := []*domain.Payment{
		earningsPayment("p1", domain.PaymentStatusSucceeded, 1000, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := service.ComputeEarnings("Luis", payments, service.EarningsQuery{}, now)

	if got.MonthlyChange != 0 {
		t.Errorf("expected 0, got %v", got.MonthlyChange)
	}
	if got.AveragePerTrip != 1000 {
		t.Errorf("expected 1000, got %d", got.AveragePerTrip)
	}
}

func TestComputeEarnings_DailySeriesKeepsLastDays(t *testing.T) {
	now := time.Date(2026, 5, 31, 10, 0, 0, 0, time.UTC)
	var payments []*domain.Payment
	for day := 1; day <= 20; day++ {
		payments = append(payments, earningsPayment("p", domain.PaymentStatusSucceeded, 100,
			time.Date(2026, 5, day, 12, 0, 0, 0, time.UTC)))
	}

	got := service.ComputeEarnings("Luis", payments, service.EarningsQuery{}, now)

	if len(got.Daily) != 14 {
		t.Fatalf("expected 14 days, got %d", len(got.Daily))
	}
	if got.Daily[0].Date != "2026-05-07" || got.Daily[13].Date != "2026-05-20" {
		t.Errorf("unexpected window %s..%s", got.Daily[0].Date, got.Daily[13].Date)
	}
}

func TestEarningsService_Validation(t *testing.T) {
	repo := NewMockPaymentRepository()
	svc := service.NewEarningsService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.DriverEarnings(ctx, " ", service.EarningsQuery{}); !errors.Is(err, service.ErrInvalidDriverName) {
		t.Errorf("expected ErrInvalidDriverName, got %v", err)
	}
	if _, err := svc.DriverEarnings(ctx, "Luis", service.EarningsQuery{Range: "year"}); !errors.Is(err, service.ErrInvalidEarningsRange) {
		t.Errorf("expected ErrInvalidEarningsRange, got %v", err)
	}
}

func TestEarningsService_FiltersByDriver(t *testing.T) {
	repo := NewMockPaymentRepository()
	now := time.Now().UTC()
	repo.AddPayment(earningsPayment("p1", domain.PaymentStatusSucceeded, 1000, now))
	other := earningsPayment("p2", domain.PaymentStatusSucceeded, 9000, now)
	other.DriverName = "Maria"
	repo.AddPayment(other)

	svc := service.NewEarningsService(repo, zerolog.Nop())

	got, err := svc.DriverEarnings(context.Background(), "Luis", service.EarningsQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalEarnings != 1000 {
		t.Errorf("expected 1000, got %d", got.TotalEarnings)
	}

	drivers, err := svc.Drivers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 2 || drivers[0] != "Luis" || drivers[1] != "Maria" {
		t.Errorf("unexpected drivers %v", drivers)
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// earningsScanLimit bounds how many payments feed one earnings summary.
const earningsScanLimit = 10000

// dailySeriesLength is how many days with earnings the daily series keeps.
const dailySeriesLength = 14

// EarningsService computes per-driver earnings from payments.
type EarningsService struct {
	paymentRepo repository.PaymentRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewEarningsService creates a new EarningsService.
func NewEarningsService(paymentRepo repository.PaymentRepository, log zerolog.Logger) *EarningsService {
	return &EarningsService{
		paymentRepo: paymentRepo,
		log:         log.With().Str("component", "earnings").Logger(),
		now:         time.Now,
	}
}

// EarningsQuery narrows the payments an earnings summary covers.
type EarningsQuery struct {
	Range  domain.EarningsRange
	Search string // matched against user name and description
}

// DriverEarnings summarizes the earnings of one driver.
func (s *EarningsService) DriverEarnings(ctx context.Context, driverName string, query EarningsQuery) (*domain.DriverEarnings, error) {
	driverName = strings.TrimSpace(driverName)
	if driverName == "" {
		return nil, ErrInvalidDriverName
	}

	if query.Range == "" {
		query.Range = domain.EarningsRangeAll
	}
	if !validEarningsRange(query.Range) {
		return nil, ErrInvalidEarningsRange
	}

	payments, err := s.paymentRepo.List(ctx, domain.PaymentFilter{
		DriverName: driverName,
		Limit:      earningsScanLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(payments) == earningsScanLimit {
		s.log.Warn().Str("driver", driverName).Msg("earnings truncated at scan limit")
	}

	earnings := ComputeEarnings(driverName, payments, query, s.now())
	return &earnings, nil
}

// Drivers returns the distinct driver names that have payments.
func (s *EarningsService) Drivers(ctx context.Context) ([]string, error) {
	return s.paymentRepo.DriverNames(ctx)
}

// ComputeEarnings summarizes a driver's payments as of now.
// The month comparison ignores query.Range so it stays meaningful for short ranges.
func ComputeEarnings(driverName string, payments []*domain.Payment, query EarningsQuery, now time.Time) domain.DriverEarnings {
	now = now.UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	since := rangeStart(query.Range, now, thisMonth)
	search := strings.ToLower(strings.TrimSpace(query.Search))

	result := domain.DriverEarnings{DriverName: driverName}
	daily := make(map[string]int64)

	for _, p := range payments {
		if search != "" && !matchesSearch(p, search) {
			continue
		}

		created := p.CreatedAt.UTC()

		if p.Status == domain.PaymentStatusSucceeded {
			switch {
			case !created.Before(thisMonth):
				result.ThisMonthEarnings += p.DriverAmount
			case !created.Before(lastMonth):
				result.LastMonthEarnings += p.DriverAmount
			}
		}

		if !since.IsZero() && created.Before(since) {
			continue
		}

		switch p.Status {
		case domain.PaymentStatusSucceeded:
			result.TotalEarnings += p.DriverAmount
			result.TotalTrips++
			daily[created.Format("2006-01-02")] += p.DriverAmount
		case domain.PaymentStatusPending:
			result.PendingEarnings += p.DriverAmount
		}
	}

	if result.TotalTrips > 0 {
		result.AveragePerTrip = decimal.NewFromInt(result.TotalEarnings).
			Div(decimal.NewFromInt(int64(result.TotalTrips))).
			Round(0).
			IntPart()
	}

	if result.LastMonthEarnings > 0 {
		last := decimal.NewFromInt(result.LastMonthEarnings)
		change, _ := decimal.NewFromInt(result.ThisMonthEarnings).
			Sub(last).
			Div(last).
			Shift(2).
			Round(2).
			Float64()
		result.MonthlyChange = change
	}

	result.Daily = dailySeries(daily)
	return result
}

func validEarningsRange(r domain.EarningsRange) bool {
	switch r {
	case domain.EarningsRangeAll, domain.EarningsRangeMonth, domain.EarningsRangeThreeMonths:
		return true
	default:
		return false
	}
}

func rangeStart(r domain.EarningsRange, now, thisMonth time.Time) time.Time {
	switch r {
	case domain.EarningsRangeMonth:
		return thisMonth
	case domain.EarningsRangeThreeMonths:
		return now.AddDate(0, -3, 0)
	default:
		return time.Time{}
	}
}

func matchesSearch(p *domain.Payment, search string) bool {
	return strings.Contains(strings.ToLower(p.UserName), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

func dailySeries(daily map[string]int64) []domain.DailyEarnings {
	series := make([]domain.DailyEarnings, 0, len(daily))
	for date, amount := range daily {
		series = append(series, domain.DailyEarnings{Date: date, Amount: amount})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	if len(series) > dailySeriesLength {
		series = series[len(series)-dailySeriesLength:]
	}
	return series
}

package domain

// PaymentStats aggregates payments. Money totals only count succeeded payments.
type PaymentStats struct {
	TotalAmount       int64
	TotalCommission   int64
	TotalDriverAmount int64
	PendingPayments   int
	CompletedPayments int
	TotalPayments     int
}

// EarningsRange selects the period earnings are computed over.
type EarningsRange string

const (
	EarningsRangeAll         EarningsRange = "all"
	EarningsRangeMonth       EarningsRange = "month"
	EarningsRangeThreeMonths EarningsRange = "3months"
)

// DailyEarnings is the driver payout earned on one calendar day.
type DailyEarnings struct {
	Date   string // YYYY-MM-DD
	Amount int64
}

// DriverEarnings summarizes what a driver earned from succeeded payments.
type DriverEarnings struct {
	DriverName        string
	TotalEarnings     int64
	PendingEarnings   int64
	TotalTrips        int
	AveragePerTrip    int64
	ThisMonthEarnings int64
	LastMonthEarnings int64
	MonthlyChange     float64 // percent, 0 when last month had no earnings
	Daily             []DailyEarnings
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/commission"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
)

// IsTerminal reports whether the status can no longer change.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s.IsTerminal()
}

// DefaultPaymentDescription is used when a checkout carries no description.
const DefaultPaymentDescription = "Trip payment"

// Payment represents a trip payment and its commission split.
// Amounts are in the currency's minor unit.
type Payment struct {
	ID                   string
	TripID               string
	GrossAmount          int64
	CommissionPercentage decimal.Decimal
	CommissionAmount     int64
	DriverAmount         int64
	Currency             string
	Status               PaymentStatus
	UserName             string
	UserEmail            string
	DriverName           string
	Description          string
	CheckoutSessionID    string
	CheckoutURL          string
	IdempotencyKey       string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ApplySplit copies a computed split onto the payment.
func (p *Payment) ApplySplit(split commission.Split) {
	p.GrossAmount = split.Gross
	p.CommissionPercentage = split.Percentage
	p.CommissionAmount = split.Commission
	p.DriverAmount = split.Driver
}

// Reconciled reports whether commission and driver amounts add up to the gross amount.
func (p *Payment) Reconciled() bool {
	return commission.Verify(p.GrossAmount, p.CommissionAmount, p.DriverAmount) == nil
}

// PaymentFilter narrows payment listings. Empty fields match everything.
type PaymentFilter struct {
	Status     PaymentStatus
	DriverName string
	TripID     string
	Limit      int
}

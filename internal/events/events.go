// Package events publishes payment lifecycle events to RabbitMQ.
package events

import (
	"time"

	"fleetpay/internal/domain"
)

// Routing keys for payment events.
const (
	PaymentCreated   = "payment.created"
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
	PaymentCanceled  = "payment.canceled"
)

// PaymentEvent is the JSON body of every payment event.
type PaymentEvent struct {
	PaymentID            string    `json:"payment_id"`
	TripID               string    `json:"trip_id,omitempty"`
	Status               string    `json:"status"`
	GrossAmount          int64     `json:"gross_amount"`
	CommissionPercentage string    `json:"commission_percentage"`
	CommissionAmount     int64     `json:"commission_amount"`
	DriverAmount         int64     `json:"driver_amount"`
	Currency             string    `json:"currency"`
	DriverName           string    `json:"driver_name,omitempty"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// NewPaymentEvent builds the event body for a payment.
func NewPaymentEvent(p *domain.Payment, at time.Time) PaymentEvent {
	return PaymentEvent{
		PaymentID:            p.ID,
		TripID:               p.TripID,
		Status:               string(p.Status),
		GrossAmount:          p.GrossAmount,
		CommissionPercentage: p.CommissionPercentage.String(),
		CommissionAmount:     p.CommissionAmount,
		DriverAmount:         p.DriverAmount,
		Currency:             p.Currency,
		DriverName:           p.DriverName,
		OccurredAt:           at,
	}
}

// RoutingKeyFor returns the routing key announcing a payment in status.
func RoutingKeyFor(status domain.PaymentStatus) string {
	switch status {
	case domain.PaymentStatusSucceeded:
		return PaymentSucceeded
	case domain.PaymentStatusFailed:
		return PaymentFailed
	case domain.PaymentStatusCanceled:
		return PaymentCanceled
	default:
		return PaymentCreated
	}
}

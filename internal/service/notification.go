package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fleetpay/internal/domain"
	"fleetpay/internal/events"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentCreated   NotificationType = "PAYMENT_CREATED"
	NotificationPaymentSucceeded NotificationType = "PAYMENT_SUCCEEDED"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationPaymentCanceled  NotificationType = "PAYMENT_CANCELED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // customer name
	Title       string
	Message     string
	RoutingKey  string
	Event       events.PaymentEvent
	CreatedAt   time.Time
}

// Publisher delivers events to the notification channel.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

// NotificationService handles notification delivery.
type NotificationService struct {
	publisher Publisher
	log       zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
// publisher may be nil, in which case notifications are only logged.
func NewNotificationService(publisher Publisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		log:       log.With().Str("component", "notifications").Logger(),
	}
}

// NotifyPaymentCreated announces a new pending payment.
func (s *NotificationService) NotifyPaymentCreated(ctx context.Context, payment *domain.Payment) error {
	now := time.Now().UTC()
	return s.send(ctx, Notification{
		Type:        NotificationPaymentCreated,
		RecipientID: payment.UserName,
		Title:       "Payment Created",
		Message:     fmt.Sprintf("Checkout for %s is ready", formatMoney(payment.GrossAmount, payment.Currency)),
		RoutingKey:  events.PaymentCreated,
		Event:       events.NewPaymentEvent(payment, now),
		CreatedAt:   now,
	})
}

// NotifyPaymentStatusChanged announces a terminal payment status.
func (s *NotificationService) NotifyPaymentStatusChanged(ctx context.Context, payment *domain.Payment) error {
	now := time.Now().UTC()
	n := Notification{
		RecipientID: payment.UserName,
		RoutingKey:  events.RoutingKeyFor(payment.Status),
		Event:       events.NewPaymentEvent(payment, now),
		CreatedAt:   now,
	}

	amount := formatMoney(payment.GrossAmount, payment.Currency)
	switch payment.Status {
	case domain.PaymentStatusSucceeded:
		n.Type = NotificationPaymentSucceeded
		n.Title = "Payment Successful"
		n.Message = fmt.Sprintf("Payment of %s was successful", amount)
	case domain.PaymentStatusFailed:
		n.Type = NotificationPaymentFailed
		n.Title = "Payment Failed"
		n.Message = fmt.Sprintf("Payment of %s failed. Please try again.", amount)
	case domain.PaymentStatusCanceled:
		n.Type = NotificationPaymentCanceled
		n.Title = "Payment Canceled"
		n.Message = fmt.Sprintf("Payment of %s was canceled", amount)
	default:
		return ErrInvalidPaymentStatus
	}

	return s.send(ctx, n)
}

// send logs the notification and publishes its event.
// Publishing failures are logged and returned; callers treat them as non-fatal.
func (s *NotificationService) send(ctx context.Context, n Notification) error {
	s.log.Info().
		Str("type", string(n.Type)).
		Str("recipient", n.RecipientID).
		Str("payment_id", n.Event.PaymentID).
		Str("title", n.Title).
		Msg(n.Message)

	if s.publisher == nil {
		return nil
	}

	if err := s.publisher.Publish(ctx, n.RoutingKey, n.Event); err != nil {
		s.log.Error().Err(err).
			Str("routing_key", n.RoutingKey).
			Str("payment_id", n.Event.PaymentID).
			Msg("failed to publish payment event")
		return err
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleetpay/internal/commission"
	"fleetpay/internal/domain"
	"fleetpay/internal/redis"
	"fleetpay/internal/repository"
)

// PaymentServiceConfig holds payment settings fixed per deployment.
type PaymentServiceConfig struct {
	Currency        string
	CheckoutLockTTL time.Duration
}

// PaymentService handles payment operations.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	tripRepo      repository.TripRepository
	locks         redis.LockStoreInterface
	provider      CheckoutProvider
	settings      *SettingsService
	notifications *NotificationService
	config        PaymentServiceConfig
	log           zerolog.Logger
	now           func() time.Time
}

// NewPaymentService creates a new PaymentService.
// locks may be nil, in which case per-trip checkouts are not serialized.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	tripRepo repository.TripRepository,
	locks redis.LockStoreInterface,
	provider CheckoutProvider,
	settings *SettingsService,
	notifications *NotificationService,
	config PaymentServiceConfig,
	log zerolog.Logger,
) *PaymentService {
	if config.CheckoutLockTTL <= 0 {
		config.CheckoutLockTTL = 10 * time.Second
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		tripRepo:      tripRepo,
		locks:         locks,
		provider:      provider,
		settings:      settings,
		notifications: notifications,
		config:        config,
		log:           log.With().Str("component", "payments").Logger(),
		now:           time.Now,
	}
}

// PreviewRequest contains the parameters for a commission preview.
// A nil CommissionPercentage uses the active setting.
type PreviewRequest struct {
	GrossAmount          int64
	CommissionPercentage *decimal.Decimal
}

// Preview computes the split a checkout with the same inputs would store.
func (s *PaymentService) Preview(ctx context.Context, req PreviewRequest) (commission.Split, error) {
	if req.GrossAmount <= 0 {
		return commission.Split{}, commission.ErrInvalidAmount
	}

	pct, err := s.resolvePercentage(ctx, req.CommissionPercentage)
	if err != nil {
		return commission.Split{}, err
	}

	return commission.ComputeSplit(req.GrossAmount, pct)
}

// CreateCheckoutRequest contains the parameters for creating a checkout.
type CreateCheckoutRequest struct {
	TripID               string
	UserName             string
	UserEmail            string
	DriverName           string
	Description          string
	IdempotencyKey       string
	GrossAmount          int64
	CommissionPercentage *decimal.Decimal
}

// CheckoutResult is a payment returned by CreateCheckout.
// Created is false when an existing payment was returned instead.
type CheckoutResult struct {
	Payment *domain.Payment
	Created bool
}

// CreateCheckout creates a pending payment with a hosted checkout session.
// Repeated requests with the same idempotency key, or for a trip that already
// has an open payment, return the existing payment.
func (s *PaymentService) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutResult, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	if req.TripID == "" && req.UserName == "" {
		return nil, ErrInvalidUserName
	}

	split, err := s.Preview(ctx, PreviewRequest{
		GrossAmount:          req.GrossAmount,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return replayCheckout(existing, req)
		}
	}

	if req.TripID != "" {
		trip, err := s.tripRepo.GetByID(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if req.UserName == "" {
			req.UserName = trip.UserName
		}
		if req.DriverName == "" {
			req.DriverName = trip.DriverName
		}

		if s.locks != nil {
			token, acquired, err := s.locks.AcquireCheckoutLock(ctx, req.TripID, s.config.CheckoutLockTTL)
			if err != nil {
				return nil, fmt.Errorf("acquire checkout lock: %w", err)
			}
			if !acquired {
				return nil, ErrCheckoutInProgress
			}
			defer func() {
				if err := s.locks.ReleaseCheckoutLock(context.WithoutCancel(ctx), req.TripID, token); err != nil {
					s.log.Warn().Err(err).Str("trip_id", req.TripID).Msg("failed to release checkout lock")
				}
			}()
		}

		open, err := s.paymentRepo.GetOpenByTripID(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if open != nil {
			return &CheckoutResult{Payment: open}, nil
		}
	}

	if req.UserName == "" {
		return nil, ErrInvalidUserName
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = domain.DefaultPaymentDescription
	}

	payment := &domain.Payment{
		ID:             uuid.New().String(),
		TripID:         req.TripID,
		Currency:       s.config.Currency,
		Status:         domain.PaymentStatusPending,
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		DriverName:     req.DriverName,
		Description:    description,
		IdempotencyKey: req.IdempotencyKey,
	}
	payment.ApplySplit(split)

	session, err := s.provider.CreateSession(ctx, CheckoutSessionRequest{
		PaymentID:     payment.ID,
		TripID:        payment.TripID,
		Amount:        payment.GrossAmount,
		Currency:      payment.Currency,
		Description:   payment.Description,
		CustomerEmail: payment.UserEmail,
		Metadata: map[string]string{
			"trip_id":               payment.TripID,
			"user_name":             payment.UserName,
			"driver_name":           payment.DriverName,
			"commission_percentage": payment.CommissionPercentage.String(),
			"commission_amount":     strconv.FormatInt(payment.CommissionAmount, 10),
			"driver_amount":         strconv.FormatInt(payment.DriverAmount, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutProvider, err)
	}
	payment.CheckoutSessionID = session.ID
	payment.CheckoutURL = session.URL

	if err := split.Reconcile(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && req.IdempotencyKey != "" {
			existing, getErr := s.paymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
			if getErr == nil && existing != nil {
				return replayCheckout(existing, req)
			}
		}
		return nil, err
	}

	s.log.Info().
		Str("payment_id", payment.ID).
		Str("trip_id", payment.TripID).
		Int64("gross_amount", payment.GrossAmount).
		Int64("commission_amount", payment.CommissionAmount).
		Int64("driver_amount", payment.DriverAmount).
		Msg("checkout created")

	_ = s.notifications.NotifyPaymentCreated(ctx, payment)

	return &CheckoutResult{Payment: payment, Created: true}, nil
}

// replayCheckout returns the payment stored under a reused idempotency key.
// A key reused for a different amount or trip is a conflict, not a replay.
func replayCheckout(existing *domain.Payment, req CreateCheckoutRequest) (*CheckoutResult, error) {
	if existing.GrossAmount != req.GrossAmount || existing.TripID != req.TripID {
		return nil, fmt.Errorf("%w: idempotency key %q was used for a different checkout", repository.ErrDuplicate, req.IdempotencyKey)
	}
	return &CheckoutResult{Payment: existing}, nil
}

// ApplyNotification moves a pending payment to a terminal status.
// Repeating the status the payment already has is a no-op.
func (s *PaymentService) ApplyNotification(ctx context.Context, paymentID string, status domain.PaymentStatus) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	if !status.IsTerminal() {
		return nil, ErrInvalidPaymentStatus
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status == status {
		return payment, nil
	}

	if payment.Status.IsTerminal() {
		return nil, repository.ErrPaymentFinalized
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, status); err != nil {
		if !errors.Is(err, repository.ErrPaymentFinalized) {
			return nil, err
		}
		// Lost the race to another notification.
		current, getErr := s.paymentRepo.GetByID(ctx, paymentID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == status {
			return current, nil
		}
		return nil, repository.ErrPaymentFinalized
	}

	payment.Status = status
	payment.UpdatedAt = s.now().UTC()

	s.log.Info().
		Str("payment_id", payment.ID).
		Str("status", string(status)).
		Msg("payment finalized")

	_ = s.notifications.NotifyPaymentStatusChanged(ctx, payment)

	return payment, nil
}

// RedirectResult carries the query parameters of a hosted checkout return URL.
type RedirectResult struct {
	PaymentID string
	Success   bool
	Canceled  bool
}

// ApplyRedirectResult applies the outcome reported by a checkout redirect.
func (s *PaymentService) ApplyRedirectResult(ctx context.Context, result RedirectResult) (*domain.Payment, error) {
	switch {
	case result.Success && !result.Canceled:
		return s.ApplyNotification(ctx, result.PaymentID, domain.PaymentStatusSucceeded)
	case result.Canceled && !result.Success:
		return s.ApplyNotification(ctx, result.PaymentID, domain.PaymentStatusCanceled)
	default:
		return nil, ErrInvalidRedirect
	}
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.checkReconciled(payment)
	return payment, nil
}

// ListPayments retrieves payments matching the filter, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidPaymentStatus
	}

	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		s.checkReconciled(p)
	}
	return payments, nil
}

// Stats aggregates payments matching the filter.
func (s *PaymentService) Stats(ctx context.Context, filter domain.PaymentFilter) (domain.PaymentStats, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return domain.PaymentStats{}, ErrInvalidPaymentStatus
	}
	return s.paymentRepo.Summarize(ctx, filter)
}

func (s *PaymentService) resolvePercentage(ctx context.Context, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return s.settings.ActivePercentage(ctx)
}

func (s *PaymentService) checkReconciled(p *domain.Payment) {
	if p.Reconciled() {
		return
	}
	s.log.Error().
		Str("payment_id", p.ID).
		Int64("gross_amount", p.GrossAmount).
		Int64("commission_amount", p.CommissionAmount).
		Int64("driver_amount", p.DriverAmount).
		Msg("stored payment split does not reconcile")
}

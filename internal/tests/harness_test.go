package tests

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleetpay/internal/service"
)

// paymentHarness wires a PaymentService over mocks.
type paymentHarness struct {
	payments  *MockPaymentRepository
	trips     *MockTripRepository
	settings  *MockSettingsRepository
	cache     *MockSettingsCache
	locks     *MockLockStore
	provider  *MockCheckoutProvider
	publisher *MockPublisher

	settingsService *service.SettingsService
	service         *service.PaymentService
}

func newPaymentHarness() *paymentHarness {
	h := &paymentHarness{
		payments:  NewMockPaymentRepository(),
		trips:     NewMockTripRepository(),
		settings:  NewMockSettingsRepository(),
		cache:     NewMockSettingsCache(),
		locks:     NewMockLockStore(),
		provider:  NewMockCheckoutProvider(),
		publisher: NewMockPublisher(),
	}

	log := zerolog.Nop()
	h.settingsService = service.NewSettingsService(h.settings, h.cache, decimal.NewFromInt(15), log)
	notifications := service.NewNotificationService(h.publisher, log)
	h.service = service.NewPaymentService(
		h.payments,
		h.trips,
		h.locks,
		h.provider,
		h.settingsService,
		notifications,
		service.PaymentServiceConfig{Currency: "mxn", CheckoutLockTTL: 10 * time.Second},
		log,
	)
	return h
}

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

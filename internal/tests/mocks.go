package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fleetpay/internal/domain"
	"fleetpay/internal/redis"
	"fleetpay/internal/repository"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	byKey    map[string]string

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
	ListError         error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
		byKey:    make(map[string]string),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	if payment.IdempotencyKey != "" {
		m.byKey[payment.IdempotencyKey] = payment.ID
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.IdempotencyKey != "" {
		if _, exists := m.byKey[payment.IdempotencyKey]; exists {
			return repository.ErrDuplicate
		}
		m.byKey[payment.IdempotencyKey] = payment.ID
	}
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil, nil
	}
	copy := *m.payments[id]
	return &copy, nil
}

func (m *MockPaymentRepository) GetOpenByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range m.payments {
		if p.TripID != tripID {
			continue
		}
		if p.Status != domain.PaymentStatusPending && p.Status != domain.PaymentStatusSucceeded {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	copy := *latest
	return &copy, nil
}

func (m *MockPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	payments := m.matching(filter)
	if filter.Limit > 0 && len(payments) > filter.Limit {
		payments = payments[:filter.Limit]
	}
	return payments, nil
}

func (m *MockPaymentRepository) Summarize(ctx context.Context, filter domain.PaymentFilter) (domain.PaymentStats, error) {
	var stats domain.PaymentStats
	for _, p := range m.matching(filter) {
		stats.TotalPayments++
		switch p.Status {
		case domain.PaymentStatusPending:
			stats.PendingPayments++
		case domain.PaymentStatusSucceeded:
			stats.CompletedPayments++
			stats.TotalAmount += p.GrossAmount
			stats.TotalCommission += p.CommissionAmount
			stats.TotalDriverAmount += p.DriverAmount
		}
	}
	return stats, nil
}

func (m *MockPaymentRepository) DriverNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for _, p := range m.payments {
		if p.DriverName != "" && !seen[p.DriverName] {
			seen[p.DriverName] = true
			names = append(names, p.DriverName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusPending {
		return repository.ErrPaymentFinalized
	}
	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()
	return nil
}

// CountPayments returns the number of payments (for test assertions).
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// GetPayment returns a stored payment without copying (for test assertions).
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) matching(filter domain.PaymentFilter) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.DriverName != "" && p.DriverName != filter.DriverName {
			continue
		}
		if filter.TripID != "" && p.TripID != filter.TripID {
			continue
		}
		copy := *p
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.ScheduledTrip
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.ScheduledTrip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.ScheduledTrip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledTrip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK SETTINGS REPOSITORY
// ──────────────────────────────────────────────

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu     sync.Mutex
	active *domain.CommissionSettings

	GetActiveCallCount int32

	ActivateError error
}

// NewMockSettingsRepository creates a new mock settings repository.
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) GetActive(ctx context.Context) (*domain.CommissionSettings, error) {
	atomic.AddInt32(&m.GetActiveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, nil
	}
	copy := *m.active
	return &copy, nil
}

func (m *MockSettingsRepository) Activate(ctx context.Context, settings *domain.CommissionSettings) error {
	if m.ActivateError != nil {
		return m.ActivateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *settings
	m.active = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK SETTINGS CACHE
// ──────────────────────────────────────────────

// MockSettingsCache is a mock implementation of SettingsCacheInterface.
type MockSettingsCache struct {
	mu       sync.Mutex
	settings *domain.CommissionSettings

	InvalidateCallCount int32
}

// NewMockSettingsCache creates a new mock settings cache.
func NewMockSettingsCache() *MockSettingsCache {
	return &MockSettingsCache{}
}

func (m *MockSettingsCache) GetActiveSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil, nil
	}
	copy := *m.settings
	return &copy, nil
}

func (m *MockSettingsCache) SetActiveSettings(ctx context.Context, settings *domain.CommissionSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *settings
	m.settings = &copy
	return nil
}

func (m *MockSettingsCache) InvalidateActiveSettings(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = nil
	return nil
}

// IsCached reports whether settings are cached (for test assertions).
func (m *MockSettingsCache) IsCached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings != nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock
	seq   int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

type mockLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireCheckoutLock(ctx context.Context, tripID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:checkout:" + tripID
	if held, exists := m.locks[key]; exists && time.Now().Before(held.expiry) {
		return "", false, nil // Lock still held.
	}

	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.locks[key] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseCheckoutLock(ctx context.Context, tripID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "lock:checkout:" + tripID
	if held, exists := m.locks[key]; exists && held.token == token {
		delete(m.locks, key)
	}
	return nil
}

// IsLocked checks if a trip checkout is locked (for test assertions).
func (m *MockLockStore) IsLocked(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks["lock:checkout:"+tripID]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// MOCK CHECKOUT PROVIDER
// ──────────────────────────────────────────────

// MockCheckoutProvider is a mock checkout provider.
type MockCheckoutProvider struct {
	mu sync.Mutex

	// Control behavior
	FailError error

	// Counters
	CreateSessionCallCount int32

	// LastRequest is the most recent session request.
	LastRequest service.CheckoutSessionRequest
}

// NewMockCheckoutProvider creates a new mock checkout provider.
func NewMockCheckoutProvider() *MockCheckoutProvider {
	return &MockCheckoutProvider{}
}

func (m *MockCheckoutProvider) CreateSession(ctx context.Context, req service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	atomic.AddInt32(&m.CreateSessionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRequest = req
	if m.FailError != nil {
		return nil, m.FailError
	}
	return &service.CheckoutSession{
		ID:  "cs_test_" + req.PaymentID,
		URL: "https://checkout.test/pay/cs_test_" + req.PaymentID,
	}, nil
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// PublishedEvent is an event captured by MockPublisher.
type PublishedEvent struct {
	RoutingKey string
	Body       any
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	FailError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailError != nil {
		return m.FailError
	}
	m.events = append(m.events, PublishedEvent{RoutingKey: routingKey, Body: v})
	return nil
}

// RoutingKeys returns the routing keys published so far, in order.
func (m *MockPublisher) RoutingKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, len(m.events))
	for i, e := range m.events {
		keys[i] = e.RoutingKey
	}
	return keys
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

// Ensure mocks implement the interfaces they stand in for.
var (
	_ repository.PaymentRepository  = (*MockPaymentRepository)(nil)
	_ repository.TripRepository     = (*MockTripRepository)(nil)
	_ repository.SettingsRepository = (*MockSettingsRepository)(nil)
	_ redis.SettingsCacheInterface  = (*MockSettingsCache)(nil)
	_ redis.LockStoreInterface      = (*MockLockStore)(nil)
	_ service.CheckoutProvider      = (*MockCheckoutProvider)(nil)
	_ service.Publisher             = (*MockPublisher)(nil)
)

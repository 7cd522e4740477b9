package redis

import (
	"context"
	"time"

	"fleetpay/internal/domain"
)

// SettingsCacheInterface defines the interface for commission settings caching.
type SettingsCacheInterface interface {
	GetActiveSettings(ctx context.Context) (*domain.CommissionSettings, error)
	SetActiveSettings(ctx context.Context, settings *domain.CommissionSettings) error
	InvalidateActiveSettings(ctx context.Context) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCheckoutLock(ctx context.Context, tripID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseCheckoutLock(ctx context.Context, tripID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ SettingsCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)

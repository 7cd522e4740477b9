package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

// SettingsCacheTTL bounds how stale a cached commission percentage can get
// on instances that missed an invalidation.
const SettingsCacheTTL = 5 * time.Minute

const activeSettingsKey = "cache:commission_settings:active"

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// cachedSettings is the JSON form of domain.CommissionSettings.
type cachedSettings struct {
	ID                   string          `json:"id"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	MinCommission        int64           `json:"min_commission"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// GetActiveSettings retrieves the cached active commission settings.
// Returns nil on a cache miss.
func (s *CacheStore) GetActiveSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	data, err := s.client.Get(ctx, activeSettingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedSettings
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &domain.CommissionSettings{
		ID:                   cached.ID,
		CommissionPercentage: cached.CommissionPercentage,
		MinCommission:        cached.MinCommission,
		IsActive:             cached.IsActive,
		CreatedAt:            cached.CreatedAt,
		UpdatedAt:            cached.UpdatedAt,
	}, nil
}

// SetActiveSettings stores the active commission settings in cache.
func (s *CacheStore) SetActiveSettings(ctx context.Context, settings *domain.CommissionSettings) error {
	data, err := json.Marshal(cachedSettings{
		ID:                   settings.ID,
		CommissionPercentage: settings.CommissionPercentage,
		MinCommission:        settings.MinCommission,
		IsActive:             settings.IsActive,
		CreatedAt:            settings.CreatedAt,
		UpdatedAt:            settings.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, activeSettingsKey, data, SettingsCacheTTL).Err()
}

// InvalidateActiveSettings removes the active commission settings from cache.
func (s *CacheStore) InvalidateActiveSettings(ctx context.Context) error {
	return s.client.Del(ctx, activeSettingsKey).Err()
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleetpay/internal/commission"
	"fleetpay/internal/domain"
	"fleetpay/internal/redis"
	"fleetpay/internal/repository"
)

// SettingsService resolves and updates the active commission settings.
type SettingsService struct {
	repo              repository.SettingsRepository
	cache             redis.SettingsCacheInterface
	defaultPercentage decimal.Decimal
	log               zerolog.Logger
	now               func() time.Time
}

// NewSettingsService creates a new SettingsService.
// cache may be nil. defaultPercentage applies while no settings row is active.
func NewSettingsService(
	repo repository.SettingsRepository,
	cache redis.SettingsCacheInterface,
	defaultPercentage decimal.Decimal,
	log zerolog.Logger,
) *SettingsService {
	return &SettingsService{
		repo:              repo,
		cache:             cache,
		defaultPercentage: defaultPercentage,
		log:               log.With().Str("component", "settings").Logger(),
		now:               time.Now,
	}
}

// UpdateSettingsRequest contains the parameters for replacing the active settings.
type UpdateSettingsRequest struct {
	CommissionPercentage decimal.Decimal
	MinCommission        int64
}

// Active returns the active settings, falling back to the configured default.
func (s *SettingsService) Active(ctx context.Context) (*domain.CommissionSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.GetActiveSettings(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("settings cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		return &domain.CommissionSettings{
			CommissionPercentage: s.defaultPercentage,
			IsActive:             true,
		}, nil
	}

	if s.cache != nil {
		if err := s.cache.SetActiveSettings(ctx, settings); err != nil {
			s.log.Warn().Err(err).Msg("settings cache write failed")
		}
	}

	return settings, nil
}

// ActivePercentage returns the commission percentage currently in force.
func (s *SettingsService) ActivePercentage(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.Active(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return settings.CommissionPercentage, nil
}

// Update stores new settings and makes them the only active row.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*domain.CommissionSettings, error) {
	if err := commission.ValidatePercentage(req.CommissionPercentage); err != nil {
		return nil, err
	}

	if req.MinCommission < 0 {
		return nil, ErrInvalidMinCommission
	}

	now := s.now().UTC()
	settings := &domain.CommissionSettings{
		ID:                   uuid.New().String(),
		CommissionPercentage: req.CommissionPercentage,
		MinCommission:        req.MinCommission,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Activate(ctx, settings); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateActiveSettings(ctx); err != nil {
			s.log.Warn().Err(err).Msg("settings cache invalidation failed")
		}
	}

	s.log.Info().
		Str("settings_id", settings.ID).
		Str("commission_percentage", settings.CommissionPercentage.String()).
		Int64("min_commission", settings.MinCommission).
		Msg("commission settings activated")

	return settings, nil
}

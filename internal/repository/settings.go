package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// SettingsRepository defines the persistence operations for commission settings.
type SettingsRepository interface {
	// GetActive retrieves the active settings.
	// Returns nil if none are active.
	GetActive(ctx context.Context) (*domain.CommissionSettings, error)

	// Activate stores settings as the only active row.
	Activate(ctx context.Context, settings *domain.CommissionSettings) error
}

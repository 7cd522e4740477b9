package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// SettingsRepository is a PostgreSQL implementation of repository.SettingsRepository.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new PostgreSQL commission settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetActive retrieves the active settings.
// Returns nil if none are active.
func (r *SettingsRepository) GetActive(ctx context.Context) (*domain.CommissionSettings, error) {
	query := `
		SELECT id, commission_percentage, min_commission, is_active, created_at, updated_at
		FROM commission_settings
		WHERE is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var settings domain.CommissionSettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.ID,
		&settings.CommissionPercentage,
		&settings.MinCommission,
		&settings.IsActive,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &settings, nil
}

// Activate deactivates the current settings and inserts the new row as active.
func (r *SettingsRepository) Activate(ctx context.Context, settings *domain.CommissionSettings) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE commission_settings SET is_active = FALSE, updated_at = NOW() WHERE is_active = TRUE`,
	); err != nil {
		return err
	}

	query := `
		INSERT INTO commission_settings (id, commission_percentage, min_commission, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
	`
	if _, err = tx.ExecContext(ctx, query,
		settings.ID,
		settings.CommissionPercentage,
		settings.MinCommission,
		settings.CreatedAt,
		settings.UpdatedAt,
	); err != nil {
		return mapWriteError(err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	settings.IsActive = true
	return nil
}

// Ensure SettingsRepository implements repository.SettingsRepository.
var _ repository.SettingsRepository = (*SettingsRepository)(nil)

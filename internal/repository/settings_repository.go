package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// settingsRowID pins the settings table to a single row.
const settingsRowID = "site-settings"

// SettingsRepository provides data access for the site settings document.
type SettingsRepository struct {
	pool PoolInterface
}

// NewSettingsRepository creates a new SettingsRepository with the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// NewSettingsRepositoryWithPool creates a SettingsRepository with a custom
// pool interface. This is primarily used for testing.
func NewSettingsRepositoryWithPool(pool PoolInterface) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get retrieves the settings row.
// Returns nil, nil when no settings row exists yet (first boot).
func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	query := `SELECT admin_emails, maintenance_mode, support_email, updated_at
		FROM settings WHERE id = $1`

	var s model.Settings
	err := r.pool.QueryRow(ctx, query, settingsRowID).Scan(
		&s.AdminEmails,
		&s.MaintenanceMode,
		&s.SupportEmail,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// Upsert writes the settings row, creating it if absent.
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.Settings) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (id, admin_emails, maintenance_mode, support_email, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE SET
			admin_emails = EXCLUDED.admin_emails,
			maintenance_mode = EXCLUDED.maintenance_mode,
			support_email = EXCLUDED.support_email,
			updated_at = now()`,
		settingsRowID, s.AdminEmails, s.MaintenanceMode, s.SupportEmail)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

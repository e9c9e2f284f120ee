package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// SettingsRepositoryInterface defines the interface for settings data access.
type SettingsRepositoryInterface interface {
	Get(ctx context.Context) (*model.Settings, error)
	Upsert(ctx context.Context, s *model.Settings) error
}

// SettingsService is the single configuration provider for site settings.
// The persisted settings row is canonical; the seed list (from the
// ADMIN_EMAILS environment variable) applies only while no row exists.
type SettingsService struct {
	repo       SettingsRepositoryInterface
	seedAdmins []string
}

// NewSettingsService creates a SettingsService with a seed whitelist for
// first boot.
func NewSettingsService(repo SettingsRepositoryInterface, seedAdmins []string) *SettingsService {
	return &SettingsService{repo: repo, seedAdmins: seedAdmins}
}

// Get returns the current settings, falling back to seed defaults when no
// settings row has been written yet.
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings == nil {
		return &model.Settings{
			AdminEmails: s.seedAdmins,
			UpdatedAt:   time.Now(),
		}, nil
	}
	return settings, nil
}

// Update replaces the settings row.
func (s *SettingsService) Update(ctx context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error) {
	if req == nil || req.MaintenanceMode == nil {
		return nil, ErrInvalidRequest
	}

	emails := make([]string, 0, len(req.AdminEmails))
	for _, e := range req.AdminEmails {
		emails = append(emails, strings.ToLower(strings.TrimSpace(e)))
	}

	settings := &model.Settings{
		AdminEmails:     emails,
		MaintenanceMode: *req.MaintenanceMode,
		SupportEmail:    strings.TrimSpace(req.SupportEmail),
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// IsWhitelisted reports whether the email may exercise admin endpoints.
func (s *SettingsService) IsWhitelisted(ctx context.Context, email string) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.IsWhitelisted(email), nil
}

// MaintenanceMode reports whether the store is in maintenance mode.
// Lookup failures fail open: a settings read outage must not take the
// storefront down with it.
func (s *SettingsService) MaintenanceMode(ctx context.Context) bool {
	settings, err := s.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read maintenance mode")
		return false
	}
	return settings.MaintenanceMode
}

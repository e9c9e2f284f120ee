package model

import (
	"strings"
	"time"
)

// Settings is the single site-wide configuration document. The admin email
// whitelist stored here is the canonical source for the admin gate; the
// ADMIN_EMAILS environment variable only seeds it on first boot.
type Settings struct {
	AdminEmails     []string  `json:"admin_emails"`
	MaintenanceMode bool      `json:"maintenance_mode"`
	SupportEmail    string    `json:"support_email"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsWhitelisted reports whether the email is on the admin whitelist,
// compared case-insensitively.
func (s *Settings) IsWhitelisted(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range s.AdminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return true
		}
	}
	return false
}

// UpdateSettingsRequest is the DTO for PUT /api/admin/settings.
type UpdateSettingsRequest struct {
	AdminEmails     []string `json:"admin_emails" validate:"required,min=1,dive,email"`
	MaintenanceMode *bool    `json:"maintenance_mode" validate:"required"`
	SupportEmail    string   `json:"support_email" validate:"omitempty,email"`
}

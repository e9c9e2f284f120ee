package model

import "time"

// TokenLength is the exact length of an issued download token
// (32 random bytes, hex-encoded).
const TokenLength = 64

// DownloadToken grants time-limited access to a purchased template file.
// Possession of the token is the authorization: there is no further identity
// check at redemption time. Records are immutable once issued; expiry is
// enforced at read time, never by deletion.
type DownloadToken struct {
	Token      string    `json:"token"`
	TemplateID string    `json:"template_id"`
	OrderID    string    `json:"order_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"-"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *DownloadToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

package model

import "time"

// AuditLog is an append-only record of an administrative action. Entries are
// never mutated or deleted by the application.
type AuditLog struct {
	ID          string         `json:"id"`
	ActorEmail  string         `json:"actor_email"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Details     map[string]any `json:"details,omitempty"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SecurityEvent is an append-only record of a security-relevant outcome,
// such as a rejected admin request.
type SecurityEvent struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Action    string         `json:"action"`
	Reason    string         `json:"reason"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	CreatedAt time.Time      `json:"created_at"`
}

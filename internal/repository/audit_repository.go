package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// AuditRepository provides append-only data access for audit logs and
// security events. There is deliberately no update or delete method.
type AuditRepository struct {
	pool PoolInterface
}

// NewAuditRepository creates a new AuditRepository with the given pool.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// NewAuditRepositoryWithPool creates an AuditRepository with a custom pool
// interface. This is primarily used for testing.
func NewAuditRepositoryWithPool(pool PoolInterface) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertAuditLog appends an audit log entry.
func (r *AuditRepository) InsertAuditLog(ctx context.Context, entry *model.AuditLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, actor_email, action, description, category, details, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ActorEmail, entry.Action, entry.Description, entry.Category,
		details, entry.IPAddress, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// InsertSecurityEvent appends a security event.
func (r *AuditRepository) InsertSecurityEvent(ctx context.Context, event *model.SecurityEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal security event details: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO security_events (id, email, action, reason, details, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Email, event.Action, event.Reason, details,
		event.IPAddress, event.UserAgent)
	if err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

// ListAuditLogs retrieves audit log entries, newest first.
func (r *AuditRepository) ListAuditLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	query := `SELECT id, actor_email, action, description, category, details, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := []model.AuditLog{}
	for rows.Next() {
		var e model.AuditLog
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorEmail, &e.Action, &e.Description,
			&e.Category, &details, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if err := unmarshalDetails(details, &e.Details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log rows: %w", err)
	}
	return entries, nil
}

// ListSecurityEvents retrieves security events, newest first.
func (r *AuditRepository) ListSecurityEvents(ctx context.Context, limit, offset int) ([]model.SecurityEvent, error) {
	query := `SELECT id, email, action, reason, details, ip_address, user_agent, created_at
		FROM security_events ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	defer rows.Close()

	events := []model.SecurityEvent{}
	for rows.Next() {
		var e model.SecurityEvent
		var details []byte
		if err := rows.Scan(&e.ID, &e.Email, &e.Action, &e.Reason,
			&details, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		if err := unmarshalDetails(details, &e.Details); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security event rows: %w", err)
	}
	return events, nil
}

func unmarshalDetails(raw []byte, dst *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal details: %w", err)
	}
	return nil
}

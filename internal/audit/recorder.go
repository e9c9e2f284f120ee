// Package audit appends administrative actions and security events to their
// append-only stores. Recording is best-effort: an audit write failure is
// logged and never fails the request that triggered it.
package audit

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// RepositoryInterface defines the append operations the recorder needs.
type RepositoryInterface interface {
	InsertAuditLog(ctx context.Context, entry *model.AuditLog) error
	InsertSecurityEvent(ctx context.Context, event *model.SecurityEvent) error
}

// RequestMeta carries request-scoped metadata into audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type metaKey struct{}

// WithRequestMeta attaches request metadata to the context so deeper layers
// can record it without threading it through every call.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// RequestMetaFrom returns the metadata attached by WithRequestMeta, or the
// zero value when none is present.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	if m, ok := ctx.Value(metaKey{}).(RequestMeta); ok {
		return m
	}
	return RequestMeta{}
}

// Recorder writes audit logs and security events. IDs are ULIDs so entries
// sort by creation time.
type Recorder struct {
	repo RepositoryInterface
}

// NewRecorder creates a Recorder.
func NewRecorder(repo RepositoryInterface) *Recorder {
	return &Recorder{repo: repo}
}

// Action appends an audit log entry for an administrative or purchase action.
func (r *Recorder) Action(ctx context.Context, actorEmail, action, description, category string, details map[string]any) {
	meta := RequestMetaFrom(ctx)
	entry := &model.AuditLog{
		ID:          ulid.Make().String(),
		ActorEmail:  actorEmail,
		Action:      action,
		Description: description,
		Category:    category,
		Details:     details,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	if err := r.repo.InsertAuditLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

// Security appends a security event, such as a rejected admin request.
func (r *Recorder) Security(ctx context.Context, email, action, reason string, details map[string]any) {
	meta := RequestMetaFrom(ctx)
	event := &model.SecurityEvent{
		ID:        ulid.Make().String(),
		Email:     email,
		Action:    action,
		Reason:    reason,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := r.repo.InsertSecurityEvent(ctx, event); err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write security event")
	}
}

package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// mockRepository is a mock implementation of RepositoryInterface.
type mockRepository struct {
	insertAuditLogFn      func(ctx context.Context, entry *model.AuditLog) error
	insertSecurityEventFn func(ctx context.Context, event *model.SecurityEvent) error
}

func (m *mockRepository) InsertAuditLog(ctx context.Context, entry *model.AuditLog) error {
	if m.insertAuditLogFn != nil {
		return m.insertAuditLogFn(ctx, entry)
	}
	return nil
}

func (m *mockRepository) InsertSecurityEvent(ctx context.Context, event *model.SecurityEvent) error {
	if m.insertSecurityEventFn != nil {
		return m.insertSecurityEventFn(ctx, event)
	}
	return nil
}

func TestRecorder_Action(t *testing.T) {
	var captured *model.AuditLog
	repo := &mockRepository{
		insertAuditLogFn: func(_ context.Context, entry *model.AuditLog) error {
			captured = entry
			return nil
		},
	}
	recorder := NewRecorder(repo)

	ctx := WithRequestMeta(context.Background(), RequestMeta{
		IPAddress: "203.0.113.10",
		UserAgent: "storefront-test/1.0",
	})
	recorder.Action(ctx, "admin@example.com", "coupon.create", "created coupon SAVE20", "coupon",
		map[string]any{"code": "SAVE20"})

	require.NotNil(t, captured)
	assert.Equal(t, "admin@example.com", captured.ActorEmail)
	assert.Equal(t, "coupon.create", captured.Action)
	assert.Equal(t, "coupon", captured.Category)
	assert.Equal(t, "203.0.113.10", captured.IPAddress)
	assert.Equal(t, "storefront-test/1.0", captured.UserAgent)

	// IDs are ULIDs so entries sort by creation time.
	_, err := ulid.Parse(captured.ID)
	assert.NoError(t, err)
}

func TestRecorder_Security(t *testing.T) {
	var captured *model.SecurityEvent
	repo := &mockRepository{
		insertSecurityEventFn: func(_ context.Context, event *model.SecurityEvent) error {
			captured = event
			return nil
		},
	}
	recorder := NewRecorder(repo)

	recorder.Security(context.Background(), "rogue@example.com", "GET /api/admin/coupons",
		"email not on admin whitelist", nil)

	require.NotNil(t, captured)
	assert.Equal(t, "rogue@example.com", captured.Email)
	assert.Equal(t, "email not on admin whitelist", captured.Reason)
	assert.Empty(t, captured.IPAddress) // no request meta attached

	_, err := ulid.Parse(captured.ID)
	assert.NoError(t, err)
}

func TestRecorder_WriteFailureDoesNotPanic(t *testing.T) {
	repo := &mockRepository{
		insertAuditLogFn: func(context.Context, *model.AuditLog) error {
			return errors.New("connection refused")
		},
		insertSecurityEventFn: func(context.Context, *model.SecurityEvent) error {
			return errors.New("connection refused")
		},
	}
	recorder := NewRecorder(repo)

	assert.NotPanics(t, func() {
		recorder.Action(context.Background(), "a@example.com", "x", "y", "z", nil)
		recorder.Security(context.Background(), "a@example.com", "x", "y", nil)
	})
}

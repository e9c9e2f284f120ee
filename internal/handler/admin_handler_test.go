package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaddamnithinreddy/templatestore/internal/middleware"
	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
	"github.com/gaddamnithinreddy/templatestore/internal/validator"
)

// mockCouponAdmin is a mock implementation of CouponAdminInterface.
type mockCouponAdmin struct {
	createFn func(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	listFn   func(ctx context.Context) ([]model.Coupon, error)
	deleteFn func(ctx context.Context, code string) error
}

func (m *mockCouponAdmin) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, nil
}

func (m *mockCouponAdmin) List(ctx context.Context) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCouponAdmin) Delete(ctx context.Context, code string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, code)
	}
	return nil
}

// mockSettingsAdmin is a mock implementation of SettingsAdminInterface.
type mockSettingsAdmin struct {
	getFn    func(ctx context.Context) (*model.Settings, error)
	updateFn func(ctx context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error)
}

func (m *mockSettingsAdmin) Get(ctx context.Context) (*model.Settings, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return &model.Settings{}, nil
}

func (m *mockSettingsAdmin) Update(ctx context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, req)
	}
	return &model.Settings{}, nil
}

// mockAuditReader is a mock implementation of AuditReaderInterface.
type mockAuditReader struct {
	listAuditLogsFn      func(ctx context.Context, limit, offset int) ([]model.AuditLog, error)
	listSecurityEventsFn func(ctx context.Context, limit, offset int) ([]model.SecurityEvent, error)
}

func (m *mockAuditReader) ListAuditLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	if m.listAuditLogsFn != nil {
		return m.listAuditLogsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockAuditReader) ListSecurityEvents(ctx context.Context, limit, offset int) ([]model.SecurityEvent, error) {
	if m.listSecurityEventsFn != nil {
		return m.listSecurityEventsFn(ctx, limit, offset)
	}
	return nil, nil
}

// mockActionAuditor is a mock implementation of ActionAuditor.
type mockActionAuditor struct {
	actions []string // "<actor>:<action>"
}

func (m *mockActionAuditor) Action(_ context.Context, actorEmail, action, _, _ string, _ map[string]any) {
	m.actions = append(m.actions, actorEmail+":"+action)
}

type adminTestDeps struct {
	coupons  *mockCouponAdmin
	settings *mockSettingsAdmin
	reader   *mockAuditReader
	auditor  *mockActionAuditor
}

// setupAdminApp wires the admin routes with the gate replaced by a stub that
// stores a fixed actor, the way the real gate does after its checks pass.
func setupAdminApp(deps adminTestDeps) *fiber.App {
	if deps.coupons == nil {
		deps.coupons = &mockCouponAdmin{}
	}
	if deps.settings == nil {
		deps.settings = &mockSettingsAdmin{}
	}
	if deps.reader == nil {
		deps.reader = &mockAuditReader{}
	}
	if deps.auditor == nil {
		deps.auditor = &mockActionAuditor{}
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.AdminEmailKey, "admin@example.com")
		return c.Next()
	})

	h := NewAdminHandler(deps.coupons, deps.settings, deps.reader, deps.auditor, validator.New())
	app.Post("/api/admin/coupons", h.CreateCoupon)
	app.Get("/api/admin/coupons", h.ListCoupons)
	app.Delete("/api/admin/coupons/:code", h.DeleteCoupon)
	app.Get("/api/admin/settings", h.GetSettings)
	app.Put("/api/admin/settings", h.UpdateSettings)
	app.Get("/api/admin/audit-logs", h.ListAuditLogs)
	app.Get("/api/admin/security-events", h.ListSecurityEvents)
	return app
}

func TestAdminCreateCoupon_Success(t *testing.T) {
	auditor := &mockActionAuditor{}
	coupons := &mockCouponAdmin{
		createFn: func(_ context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
			return &model.Coupon{Code: "SAVE20", DiscountType: model.DiscountPercentage, DiscountValue: 20, IsActive: true}, nil
		},
	}
	app := setupAdminApp(adminTestDeps{coupons: coupons, auditor: auditor})

	resp := postJSON(t, app, "/api/admin/coupons",
		`{"code":"SAVE20","discount_type":"percentage","discount_value":20,"valid_from":"2026-01-01T00:00:00Z","valid_until":"2026-12-31T23:59:59Z"}`)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeJSONBody(t, resp.Body)
	assert.Equal(t, "SAVE20", body["code"])
	require.Len(t, auditor.actions, 1)
	assert.Equal(t, "admin@example.com:coupon.create", auditor.actions[0])
}

func TestAdminCreateCoupon_PercentageOver100(t *testing.T) {
	coupons := &mockCouponAdmin{
		createFn: func(context.Context, *model.CreateCouponRequest) (*model.Coupon, error) {
			return nil, service.ErrInvalidRequest
		},
	}
	auditor := &mockActionAuditor{}
	app := setupAdminApp(adminTestDeps{coupons: coupons, auditor: auditor})

	resp := postJSON(t, app, "/api/admin/coupons",
		`{"code":"BIG","discount_type":"percentage","discount_value":150,"valid_from":"2026-01-01T00:00:00Z","valid_until":"2026-12-31T23:59:59Z"}`)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeJSONBody(t, resp.Body)
	assert.Equal(t, "INVALID_INPUT", body["code"])
	assert.Empty(t, auditor.actions)
}

func TestAdminCreateCoupon_Duplicate(t *testing.T) {
	coupons := &mockCouponAdmin{
		createFn: func(context.Context, *model.CreateCouponRequest) (*model.Coupon, error) {
			return nil, service.ErrCouponExists
		},
	}
	app := setupAdminApp(adminTestDeps{coupons: coupons})

	resp := postJSON(t, app, "/api/admin/coupons",
		`{"code":"DUP","discount_type":"fixed","discount_value":50,"valid_from":"2026-01-01T00:00:00Z","valid_until":"2026-12-31T23:59:59Z"}`)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeJSONBody(t, resp.Body)
	assert.Equal(t, "COUPON_EXISTS", body["code"])
}

func TestAdminCreateCoupon_InvalidCode(t *testing.T) {
	app := setupAdminApp(adminTestDeps{})

	resp := postJSON(t, app, "/api/admin/coupons",
		`{"code":"SAVE 20%","discount_type":"fixed","discount_value":50,"valid_from":"2026-01-01T00:00:00Z","valid_until":"2026-12-31T23:59:59Z"}`)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminDeleteCoupon(t *testing.T) {
	auditor := &mockActionAuditor{}
	var deleted string
	coupons := &mockCouponAdmin{
		deleteFn: func(_ context.Context, code string) error {
			deleted = code
			return nil
		},
	}
	app := setupAdminApp(adminTestDeps{coupons: coupons, auditor: auditor})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/admin/coupons/SAVE20", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "SAVE20", deleted)
	require.Len(t, auditor.actions, 1)
	assert.Equal(t, "admin@example.com:coupon.delete", auditor.actions[0])
}

func TestAdminDeleteCoupon_NotFound(t *testing.T) {
	coupons := &mockCouponAdmin{
		deleteFn: func(context.Context, string) error {
			return service.ErrCouponNotFound
		},
	}
	app := setupAdminApp(adminTestDeps{coupons: coupons})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/admin/coupons/GONE", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminUpdateSettings(t *testing.T) {
	auditor := &mockActionAuditor{}
	var captured *model.UpdateSettingsRequest
	settings := &mockSettingsAdmin{
		updateFn: func(_ context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error) {
			captured = req
			return &model.Settings{
				AdminEmails:     []string{"admin@example.com", "ops@example.com"},
				MaintenanceMode: true,
			}, nil
		},
	}
	app := setupAdminApp(adminTestDeps{settings: settings, auditor: auditor})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings",
		bytes.NewBufferString(`{"admin_emails":["admin@example.com","ops@example.com"],"maintenance_mode":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, captured)
	assert.Len(t, captured.AdminEmails, 2)
	require.Len(t, auditor.actions, 1)
	assert.Equal(t, "admin@example.com:settings.update", auditor.actions[0])
}

func TestAdminUpdateSettings_InvalidEmails(t *testing.T) {
	app := setupAdminApp(adminTestDeps{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings",
		bytes.NewBufferString(`{"admin_emails":["not-an-email"],"maintenance_mode":false}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminListAuditLogs_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	reader := &mockAuditReader{
		listAuditLogsFn: func(_ context.Context, limit, offset int) ([]model.AuditLog, error) {
			gotLimit, gotOffset = limit, offset
			return []model.AuditLog{{ID: "01ARZ", Action: "coupon.create"}}, nil
		},
	}
	app := setupAdminApp(adminTestDeps{reader: reader})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs?limit=25&offset=50", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 50, gotOffset)
}

func TestAdminListAuditLogs_LimitClamped(t *testing.T) {
	var gotLimit int
	reader := &mockAuditReader{
		listAuditLogsFn: func(_ context.Context, limit, _ int) ([]model.AuditLog, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	app := setupAdminApp(adminTestDeps{reader: reader})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs?limit=100000", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, gotLimit)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs", nil))
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
}

func TestAdminListSecurityEvents(t *testing.T) {
	reader := &mockAuditReader{
		listSecurityEventsFn: func(context.Context, int, int) ([]model.SecurityEvent, error) {
			return []model.SecurityEvent{{ID: "01ARZ", Reason: "email not on admin whitelist"}}, nil
		},
	}
	app := setupAdminApp(adminTestDeps{reader: reader})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/security-events", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeJSONBody(t, resp.Body)
	events, ok := body["events"].([]any)
	require.True(t, ok)
	assert.Len(t, events, 1)
}

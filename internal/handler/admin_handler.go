package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/middleware"
	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// CouponAdminInterface defines the coupon operations the admin console uses.
type CouponAdminInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Delete(ctx context.Context, code string) error
}

// SettingsAdminInterface defines the settings operations the admin console uses.
type SettingsAdminInterface interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, req *model.UpdateSettingsRequest) (*model.Settings, error)
}

// AuditReaderInterface defines read access to the audit stores.
type AuditReaderInterface interface {
	ListAuditLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]model.SecurityEvent, error)
}

// ActionAuditor appends audit entries for admin mutations.
type ActionAuditor interface {
	Action(ctx context.Context, actorEmail, action, description, category string, details map[string]any)
}

// AdminHandler handles admin console requests. Every route it serves sits
// behind the admin gate middleware.
type AdminHandler struct {
	coupons   CouponAdminInterface
	settings  SettingsAdminInterface
	auditRead AuditReaderInterface
	audit     ActionAuditor
	validator *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(coupons CouponAdminInterface, settings SettingsAdminInterface,
	auditRead AuditReaderInterface, audit ActionAuditor, v *validator.Validate) *AdminHandler {
	return &AdminHandler{
		coupons:   coupons,
		settings:  settings,
		auditRead: auditRead,
		audit:     audit,
		validator: v,
	}
}

// actorEmail returns the verified admin email the gate stored.
func actorEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals(middleware.AdminEmailKey).(string); ok {
		return email
	}
	return ""
}

// CreateCoupon handles POST /api/admin/coupons requests.
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body", "code": "INVALID_INPUT",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": formatValidationError(err), "code": "INVALID_INPUT",
		})
	}

	coupon, err := h.coupons.Create(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "coupon already exists", "code": "COUPON_EXISTS",
			})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(), "code": "INVALID_INPUT",
			})
		}
		log.Error().Err(err).Str("coupon_code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	h.audit.Action(c.UserContext(), actorEmail(c), "coupon.create",
		"created coupon "+coupon.Code, "coupons",
		map[string]any{"code": coupon.Code, "discount_type": coupon.DiscountType})
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// ListCoupons handles GET /api/admin/coupons requests.
func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.coupons.List(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to list coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(fiber.Map{"coupons": coupons})
}

// DeleteCoupon handles DELETE /api/admin/coupons/:code requests.
func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.coupons.Delete(c.UserContext(), code); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "coupon not found", "code": "COUPON_NOT_FOUND",
			})
		}
		log.Error().Err(err).Str("coupon_code", code).Msg("failed to delete coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	h.audit.Action(c.UserContext(), actorEmail(c), "coupon.delete",
		"deleted coupon "+code, "coupons", map[string]any{"code": code})
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSettings handles GET /api/admin/settings requests.
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to get settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(settings)
}

// UpdateSettings handles PUT /api/admin/settings requests. The admin email
// whitelist lives here, so this is also the whitelist management endpoint.
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req model.UpdateSettingsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body", "code": "INVALID_INPUT",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": formatValidationError(err), "code": "INVALID_INPUT",
		})
	}

	settings, err := h.settings.Update(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request", "code": "INVALID_INPUT",
			})
		}
		log.Error().Err(err).Msg("failed to update settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	h.audit.Action(c.UserContext(), actorEmail(c), "settings.update",
		"updated site settings", "settings",
		map[string]any{
			"admin_emails":     settings.AdminEmails,
			"maintenance_mode": settings.MaintenanceMode,
		})
	return c.JSON(settings)
}

// pagination reads limit/offset query params with sane bounds.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 200 {
		limit = 200
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// ListAuditLogs handles GET /api/admin/audit-logs requests.
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	entries, err := h.auditRead.ListAuditLogs(c.UserContext(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list audit logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// ListSecurityEvents handles GET /api/admin/security-events requests.
func (h *AdminHandler) ListSecurityEvents(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	events, err := h.auditRead.ListSecurityEvents(c.UserContext(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list security events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(fiber.Map{"events": events})
}

package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/metrics"
	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// CouponVerifierInterface defines the interface for coupon verification.
type CouponVerifierInterface interface {
	Validate(ctx context.Context, code, email string) (*model.Coupon, error)
}

// CouponHandler handles the public coupon verification endpoint.
type CouponHandler struct {
	service   CouponVerifierInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponVerifierInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// couponRejectionMessage maps coupon validity rejections to the messages the
// verify endpoint reports. Returns "" for errors that are not rejections.
func couponRejectionMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		return "coupon not found"
	case errors.Is(err, service.ErrCouponInactive):
		return "this coupon is no longer active"
	case errors.Is(err, service.ErrCouponNotYetActive):
		return "this coupon is not active yet"
	case errors.Is(err, service.ErrCouponExpired):
		return "this coupon has expired"
	case errors.Is(err, service.ErrUsageLimitReached):
		return "this coupon has reached its usage limit"
	case errors.Is(err, service.ErrEmailRestricted):
		return "this coupon is not available for your email"
	default:
		return ""
	}
}

// Verify handles POST /api/coupons/verify requests.
// Invalid coupons are reported with a 200 and valid=false, not an error
// status; clients must inspect the valid field.
func (h *CouponHandler) Verify(c *fiber.Ctx) error {
	var req model.VerifyCouponRequest

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

	coupon, err := h.service.Validate(c.UserContext(), req.Code, req.UserEmail)
	if err != nil {
		if msg := couponRejectionMessage(err); msg != "" {
			metrics.CouponVerifications.WithLabelValues("rejected").Inc()
			return c.JSON(model.VerifyCouponResponse{Valid: false, Message: msg})
		}
		log.Error().Err(err).Str("code", req.Code).Msg("failed to verify coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	metrics.CouponVerifications.WithLabelValues("valid").Inc()

	resp := model.VerifyCouponResponse{
		Valid:        true,
		DiscountType: string(coupon.DiscountType),
		Coupon:       coupon,
	}
	if req.TemplatePrice != nil {
		discount := coupon.Discount(*req.TemplatePrice)
		final := coupon.FinalPrice(*req.TemplatePrice)
		resp.DiscountAmount = &discount
		resp.FinalPrice = &final
	}
	return c.JSON(resp)
}

package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// OrderServiceInterface defines the interface for the checkout flow.
type OrderServiceInterface interface {
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error)
	CompletePayment(ctx context.Context, req *model.VerifyPaymentRequest) (*model.CompletePaymentResponse, error)
	HandleCashfreeWebhook(ctx context.Context, timestamp, signature string, body []byte) error
}

// OrderHandler handles HTTP requests for checkout and payment capture.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req model.CreateOrderRequest

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

	resp, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "template not found", "code": "TEMPLATE_NOT_FOUND",
			})
		}
		if msg := couponRejectionMessage(err); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msg, "code": "COUPON_REJECTED",
			})
		}
		if errors.Is(err, service.ErrUnknownGateway) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unsupported payment gateway", "code": "INVALID_INPUT",
			})
		}
		log.Error().Err(err).Str("template_id", req.TemplateID).Msg("failed to create order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// VerifyPayment handles POST /api/payments/verify (Razorpay checkout callback).
func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	var req model.VerifyPaymentRequest

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

	resp, err := h.service.CompletePayment(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "order not found", "code": "ORDER_NOT_FOUND",
			})
		case errors.Is(err, service.ErrOrderAlreadyPaid):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "order already paid", "code": "ORDER_ALREADY_PAID",
			})
		case errors.Is(err, service.ErrPaymentVerification):
			log.Warn().Str("order_id", req.OrderID).Msg("payment signature verification failed")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "payment verification failed", "code": "PAYMENT_VERIFICATION_FAILED",
			})
		}
		log.Error().Err(err).Str("order_id", req.OrderID).Msg("failed to complete payment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	return c.JSON(resp)
}

// CashfreeWebhook handles POST /api/payments/cashfree/webhook.
// The raw body is what the signature covers, so it is read before parsing.
func (h *OrderHandler) CashfreeWebhook(c *fiber.Ctx) error {
	timestamp := c.Get("x-webhook-timestamp")
	signature := c.Get("x-webhook-signature")
	body := c.Body()

	err := h.service.HandleCashfreeWebhook(c.UserContext(), timestamp, signature, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentVerification):
			log.Warn().Msg("cashfree webhook signature verification failed")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "webhook verification failed", "code": "PAYMENT_VERIFICATION_FAILED",
			})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed webhook body", "code": "INVALID_INPUT",
			})
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "order not found", "code": "ORDER_NOT_FOUND",
			})
		}
		log.Error().Err(err).Msg("failed to process cashfree webhook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// TemplateServiceInterface defines the interface for catalog reads.
type TemplateServiceInterface interface {
	List(ctx context.Context) ([]model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
}

// TemplateHandler handles HTTP requests for the template catalog.
type TemplateHandler struct {
	service TemplateServiceInterface
}

// NewTemplateHandler creates a new TemplateHandler with the given service.
func NewTemplateHandler(svc TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

// List handles GET /api/templates requests.
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	templates, err := h.service.List(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("failed to list templates")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(fiber.Map{"templates": templates})
}

// Get handles GET /api/templates/:id requests.
func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	template, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "template not found", "code": "TEMPLATE_NOT_FOUND",
			})
		}
		log.Error().Err(err).Str("template_id", c.Params("id")).Msg("failed to get template")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error", "code": "INTERNAL_ERROR",
		})
	}
	return c.JSON(template)
}

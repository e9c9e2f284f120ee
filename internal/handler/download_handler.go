package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/metrics"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// DownloadServiceInterface defines the interface for download redemption.
type DownloadServiceInterface interface {
	Redeem(ctx context.Context, token string) (*service.DownloadResult, error)
}

// DownloadHandler handles HTTP requests for download token redemption.
type DownloadHandler struct {
	service DownloadServiceInterface
}

// NewDownloadHandler creates a new DownloadHandler with the given service.
func NewDownloadHandler(svc DownloadServiceInterface) *DownloadHandler {
	return &DownloadHandler{service: svc}
}

// downloadErrorStatus maps redemption failures to HTTP status and stable
// machine-readable codes.
func downloadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return fiber.StatusBadRequest, "INVALID_TOKEN"
	case errors.Is(err, service.ErrTokenNotFound):
		return fiber.StatusNotFound, "TOKEN_NOT_FOUND"
	case errors.Is(err, service.ErrTokenExpired):
		return fiber.StatusGone, "TOKEN_EXPIRED"
	case errors.Is(err, service.ErrTemplateNotFound):
		return fiber.StatusNotFound, "TEMPLATE_NOT_FOUND"
	case errors.Is(err, service.ErrFileNotAvailable):
		return fiber.StatusNotFound, "FILE_NOT_AVAILABLE"
	case errors.Is(err, service.ErrFileNetwork):
		return fiber.StatusInternalServerError, "FILE_NETWORK_ERROR"
	case errors.Is(err, service.ErrFileFetch):
		return fiber.StatusInternalServerError, "FILE_FETCH_FAILED"
	case errors.Is(err, service.ErrInvalidFileURL):
		return fiber.StatusInternalServerError, "INVALID_FILE_URL"
	case errors.Is(err, service.ErrInvalidFileFormat):
		return fiber.StatusInternalServerError, "INVALID_FILE_FORMAT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// downloadErrorMessage returns the client-facing message for a failure.
// Unclassified errors get a non-revealing message; the detail stays in logs.
func downloadErrorMessage(err error, code string) string {
	if code == "INTERNAL_ERROR" {
		return "internal server error"
	}
	return err.Error()
}

// Download handles GET /downloads/:token requests.
// The response must never be cached: the content is access-controlled.
func (h *DownloadHandler) Download(c *fiber.Ctx) error {
	token := c.Params("token")

	result, err := h.service.Redeem(c.UserContext(), token)
	if err != nil {
		status, code := downloadErrorStatus(err)
		metrics.Downloads.WithLabelValues(code).Inc()
		if code == "INTERNAL_ERROR" {
			log.Error().Err(err).Msg("download redemption failed")
		} else {
			log.Info().Str("code", code).Msg("download redemption rejected")
		}
		return c.Status(status).JSON(fiber.Map{
			"error": downloadErrorMessage(err, code),
			"code":  code,
		})
	}

	metrics.Downloads.WithLabelValues("OK").Inc()

	c.Set(fiber.HeaderContentType, "application/json")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	c.Set(fiber.HeaderCacheControl, "private, no-cache, no-store, must-revalidate")
	c.Set("X-Content-Type-Options", "nosniff")
	return c.Send(result.Data)
}

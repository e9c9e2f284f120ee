package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaddamnithinreddy/templatestore/internal/service"
)

// mockDownloadService is a mock implementation of DownloadServiceInterface.
type mockDownloadService struct {
	redeemFn func(ctx context.Context, token string) (*service.DownloadResult, error)
}

func (m *mockDownloadService) Redeem(ctx context.Context, token string) (*service.DownloadResult, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, token)
	}
	return nil, service.ErrTokenNotFound
}

func setupDownloadApp(svc *mockDownloadService) *fiber.App {
	app := fiber.New()
	h := NewDownloadHandler(svc)
	app.Get("/downloads/:token", h.Download)
	return app
}

func decodeJSONBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestDownload_Success(t *testing.T) {
	workflow := `{"name":"invoice-bot","nodes":[]}`
	svc := &mockDownloadService{
		redeemFn: func(_ context.Context, token string) (*service.DownloadResult, error) {
			return &service.DownloadResult{
				Data:     []byte(workflow),
				Filename: "invoice-bot.json",
			}, nil
		},
	}
	app := setupDownloadApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/downloads/sometoken", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-bot.json"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "private, no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, workflow, string(data))
}

func TestDownload_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid token", service.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
		{"not found", service.ErrTokenNotFound, fiber.StatusNotFound, "TOKEN_NOT_FOUND"},
		{"expired", service.ErrTokenExpired, fiber.StatusGone, "TOKEN_EXPIRED"},
		{"template missing", service.ErrTemplateNotFound, fiber.StatusNotFound, "TEMPLATE_NOT_FOUND"},
		{"no file", service.ErrFileNotAvailable, fiber.StatusNotFound, "FILE_NOT_AVAILABLE"},
		{"network", service.ErrFileNetwork, fiber.StatusInternalServerError, "FILE_NETWORK_ERROR"},
		{"fetch", service.ErrFileFetch, fiber.StatusInternalServerError, "FILE_FETCH_FAILED"},
		{"html url", service.ErrInvalidFileURL, fiber.StatusInternalServerError, "INVALID_FILE_URL"},
		{"bad format", service.ErrInvalidFileFormat, fiber.StatusInternalServerError, "INVALID_FILE_FORMAT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockDownloadService{
				redeemFn: func(context.Context, string) (*service.DownloadResult, error) {
					return nil, tc.err
				},
			}
			app := setupDownloadApp(svc)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/downloads/sometoken", nil))
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			body := decodeJSONBody(t, resp.Body)
			assert.Equal(t, tc.wantCode, body["code"])
		})
	}
}

func TestDownload_UnclassifiedErrorHidesDetail(t *testing.T) {
	svc := &mockDownloadService{
		redeemFn: func(context.Context, string) (*service.DownloadResult, error) {
			return nil, context.DeadlineExceeded
		},
	}
	app := setupDownloadApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/downloads/sometoken", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeJSONBody(t, resp.Body)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "internal server error", body["error"])
}

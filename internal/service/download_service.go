package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// TokenRepositoryInterface defines the interface for token data access.
type TokenRepositoryInterface interface {
	Insert(ctx context.Context, token *model.DownloadToken) error
	GetByToken(ctx context.Context, token string) (*model.DownloadToken, error)
}

// TemplateRepositoryInterface defines the interface for template data access.
type TemplateRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Template, error)
	ListActive(ctx context.Context) ([]model.Template, error)
}

// DownloadResult is the payload returned by a successful redemption.
type DownloadResult struct {
	Data     []byte
	Filename string
}

// DownloadService issues and redeems download tokens. Tokens are bearer
// credentials: possession is authorization, so redemption does no identity
// check beyond the token lookup itself.
type DownloadService struct {
	tokens    TokenRepositoryInterface
	templates TemplateRepositoryInterface
	client    *http.Client
	tokenTTL  time.Duration
}

// NewDownloadService creates a DownloadService. A nil client gets a default
// with a 30s timeout; the file host is external and must not hang a request.
func NewDownloadService(tokens TokenRepositoryInterface, templates TemplateRepositoryInterface, client *http.Client, tokenTTL time.Duration) *DownloadService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &DownloadService{
		tokens:    tokens,
		templates: templates,
		client:    client,
		tokenTTL:  tokenTTL,
	}
}

// IssueToken creates and persists a download token for a completed purchase.
// Tokens are immutable once issued; expiry is enforced at redemption time.
func (s *DownloadService) IssueToken(ctx context.Context, templateID, orderID string) (*model.DownloadToken, error) {
	buf := make([]byte, model.TokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	token := &model.DownloadToken{
		Token:      hex.EncodeToString(buf),
		TemplateID: templateID,
		OrderID:    orderID,
		ExpiresAt:  time.Now().Add(s.tokenTTL),
	}
	if err := s.tokens.Insert(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Redeem resolves a token to the purchased template file.
// Returns:
//   - ErrInvalidToken for tokens that fail the shape check (no store lookup)
//   - ErrTokenNotFound when no record matches
//   - ErrTokenExpired when the record exists but is past expiry
//   - ErrTemplateNotFound / ErrFileNotAvailable for data-integrity faults
//   - ErrFileNetwork / ErrFileFetch / ErrInvalidFileURL / ErrInvalidFileFormat
//     for file-host failures, each distinct so operators can tell network
//     faults from configuration faults
//
// Every failure is terminal for the request; there are no retries.
func (s *DownloadService) Redeem(ctx context.Context, token string) (*DownloadResult, error) {
	if len(token) != model.TokenLength {
		return nil, ErrInvalidToken
	}

	record, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if record == nil {
		return nil, ErrTokenNotFound
	}
	if record.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	template, err := s.templates.GetByID(ctx, record.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if strings.TrimSpace(template.FileURL) == "" {
		return nil, ErrFileNotAvailable
	}

	data, err := s.fetchFile(ctx, template.FileURL)
	if err != nil {
		return nil, err
	}

	filename := template.Slug
	if filename == "" {
		filename = template.ID
	}
	return &DownloadResult{
		Data:     data,
		Filename: filename + ".json",
	}, nil
}

// fetchFile retrieves the template file from the external host and checks
// that the response is actually workflow JSON, not an HTML error page.
func (s *DownloadService) fetchFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrInvalidFileURL
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFileFetch, resp.StatusCode)
	}

	// An HTML response means the stored URL points at a web page, not the
	// raw file. That is an upstream configuration fault.
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		return nil, ErrInvalidFileURL
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNetwork, err)
	}
	if !json.Valid(data) {
		return nil, ErrInvalidFileFormat
	}
	return data, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// TemplateService provides read access to the template catalog.
type TemplateService struct {
	repo TemplateRepositoryInterface
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(repo TemplateRepositoryInterface) *TemplateService {
	return &TemplateService{repo: repo}
}

// List returns all active templates.
func (s *TemplateService) List(ctx context.Context) ([]model.Template, error) {
	return s.repo.ListActive(ctx)
}

// Get retrieves a single active template by id.
// Returns ErrTemplateNotFound for missing or deactivated templates.
func (s *TemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	template, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if template == nil || !template.IsActive {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

func TestTemplateService_List(t *testing.T) {
	repo := &mockTemplateRepository{
		listActiveFn: func(context.Context) ([]model.Template, error) {
			return []model.Template{
				{ID: "tpl-1", Slug: "invoice-bot", IsActive: true},
				{ID: "tpl-2", Slug: "lead-sync", IsActive: true},
			}, nil
		},
	}
	svc := NewTemplateService(repo)

	templates, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestTemplateService_Get(t *testing.T) {
	repo := &mockTemplateRepository{
		getByIDFn: func(_ context.Context, id string) (*model.Template, error) {
			return &model.Template{ID: id, Slug: "invoice-bot", IsActive: true}, nil
		},
	}
	svc := NewTemplateService(repo)

	template, err := svc.Get(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", template.ID)
}

func TestTemplateService_Get_Missing(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepository{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateService_Get_Inactive(t *testing.T) {
	repo := &mockTemplateRepository{
		getByIDFn: func(_ context.Context, id string) (*model.Template, error) {
			return &model.Template{ID: id, IsActive: false}, nil
		},
	}
	svc := NewTemplateService(repo)

	// Deactivated templates are indistinguishable from missing ones.
	_, err := svc.Get(context.Background(), "tpl-1")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// TemplateRepository provides data access for templates using pgx.
type TemplateRepository struct {
	pool PoolInterface
}

// NewTemplateRepository creates a new TemplateRepository with the given pool.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// NewTemplateRepositoryWithPool creates a TemplateRepository with a custom
// pool interface. This is primarily used for testing.
func NewTemplateRepositoryWithPool(pool PoolInterface) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, slug, name, description, category, price, file_url, is_active, created_at`

func scanTemplate(row pgx.Row) (*model.Template, error) {
	var t model.Template
	err := row.Scan(
		&t.ID,
		&t.Slug,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.Price,
		&t.FileURL,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a template by id.
// Returns nil, nil if the template is not found (service layer handles this).
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get template by id %s: %w", id, err)
	}
	return t, nil
}

// ListActive retrieves all active templates ordered by creation time.
func (r *TemplateRepository) ListActive(ctx context.Context) ([]model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE is_active ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}
	return templates, nil
}

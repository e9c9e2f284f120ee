package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
)

// TokenRepository provides data access for download tokens using pgx.
// Token rows are write-once: there is no update or delete path.
type TokenRepository struct {
	pool PoolInterface
}

// NewTokenRepository creates a new TokenRepository with the given pool.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// NewTokenRepositoryWithPool creates a TokenRepository with a custom pool
// interface. This is primarily used for testing.
func NewTokenRepositoryWithPool(pool PoolInterface) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Insert persists a newly issued download token.
func (r *TokenRepository) Insert(ctx context.Context, token *model.DownloadToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO download_tokens (token, template_id, order_id, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		token.Token, token.TemplateID, token.OrderID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert download token: %w", err)
	}
	return nil
}

// GetByToken retrieves a download token by exact match.
// Returns nil, nil if the token is not found (service layer handles this).
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*model.DownloadToken, error) {
	query := `SELECT token, template_id, order_id, expires_at, created_at
		FROM download_tokens WHERE token = $1`

	var t model.DownloadToken
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&t.Token,
		&t.TemplateID,
		&t.OrderID,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get download token: %w", err)
	}
	return &t, nil
}

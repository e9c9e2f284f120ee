package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
	"github.com/gaddamnithinreddy/templatestore/pkg/database"
)

// OrderRepository provides data access for orders using pgx.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates an OrderRepository with a custom pool
// interface. This is primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, template_id, email, amount, discount_amount, coupon_code,
	final_amount, gateway, gateway_order_id, status, created_at, paid_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.TemplateID,
		&o.Email,
		&o.Amount,
		&o.DiscountAmount,
		&o.CouponCode,
		&o.FinalAmount,
		&o.Gateway,
		&o.GatewayOrderID,
		&o.Status,
		&o.CreatedAt,
		&o.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Insert persists a new order.
func (r *OrderRepository) Insert(ctx context.Context, order *model.Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, template_id, email, amount, discount_amount, coupon_code,
			final_amount, gateway, gateway_order_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.TemplateID, order.Email, order.Amount, order.DiscountAmount,
		order.CouponCode, order.FinalAmount, order.Gateway, order.GatewayOrderID,
		order.Status)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by id.
// Returns nil, nil if the order is not found (service layer handles this).
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id %s: %w", id, err)
	}
	return o, nil
}

// GetByGatewayOrderID retrieves an order by the gateway's order identifier.
// Returns nil, nil if the order is not found.
func (r *OrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, gatewayOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by gateway order id %s: %w", gatewayOrderID, err)
	}
	return o, nil
}

// MarkPaid transitions an order to paid within a transaction.
// Must run in the same transaction as the coupon usage increment so the two
// effects commit or roll back together. The status guard makes the transition
// single-shot: a completion that raced another one to the same order sees
// zero rows matched and gets service.ErrOrderAlreadyPaid, so only one
// completion ever reaches the coupon redemption and token issuance.
func (r *OrderRepository) MarkPaid(ctx context.Context, tx database.TxQuerier, id string, paidAt time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, paid_at = $2 WHERE id = $3 AND status <> $1`,
		model.OrderStatusPaid, paidAt, id)
	if err != nil {
		return fmt.Errorf("mark order %s paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrOrderAlreadyPaid
	}
	return nil
}

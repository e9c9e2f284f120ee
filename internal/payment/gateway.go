// Package payment wraps the external payment gateways behind a small
// interface. Gateways are consumed as black boxes: order creation is a REST
// call, capture verification is an HMAC signature check.
package payment

import "context"

// CreateOrderParams describes an order to open with a gateway.
type CreateOrderParams struct {
	// Receipt is the store-side order id, echoed back by the gateway.
	Receipt       string
	Amount        float64 // major currency units
	Currency      string
	CustomerEmail string
}

// GatewayOrder is the gateway's handle for a created order.
type GatewayOrder struct {
	ID string
	// PaymentSessionID is set by gateways whose checkout opens from a
	// session rather than an order id (Cashfree).
	PaymentSessionID string
}

// Gateway creates orders with an external payment provider.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, p CreateOrderParams) (*GatewayOrder, error)
}

package model

import "time"

// Order statuses. Orders move created -> paid; failed is terminal.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Payment gateway identifiers.
const (
	GatewayRazorpay = "razorpay"
	GatewayCashfree = "cashfree"
)

// Order is a purchase of a single template.
type Order struct {
	ID             string     `json:"id"`
	TemplateID     string     `json:"template_id"`
	Email          string     `json:"email"`
	Amount         float64    `json:"amount"`
	DiscountAmount float64    `json:"discount_amount"`
	CouponCode     string     `json:"coupon_code,omitempty"`
	FinalAmount    float64    `json:"final_amount"`
	Gateway        string     `json:"gateway"`
	GatewayOrderID string     `json:"gateway_order_id"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// CreateOrderRequest is the DTO for POST /api/orders.
type CreateOrderRequest struct {
	TemplateID string `json:"template_id" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,email"`
	CouponCode string `json:"coupon_code" validate:"omitempty,max=50"`
	Gateway    string `json:"gateway" validate:"required,oneof=razorpay cashfree"`
}

// CreateOrderResponse carries what the client needs to open the gateway
// checkout. PaymentSessionID is set for Cashfree, GatewayKeyID for Razorpay.
type CreateOrderResponse struct {
	OrderID          string  `json:"order_id"`
	GatewayOrderID   string  `json:"gateway_order_id"`
	Gateway          string  `json:"gateway"`
	Amount           float64 `json:"amount"`
	DiscountAmount   float64 `json:"discount_amount"`
	FinalAmount      float64 `json:"final_amount"`
	Currency         string  `json:"currency"`
	GatewayKeyID     string  `json:"gateway_key_id,omitempty"`
	PaymentSessionID string  `json:"payment_session_id,omitempty"`
}

// VerifyPaymentRequest is the DTO for POST /api/payments/verify
// (Razorpay checkout callback).
type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id" validate:"required,notblank"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required,notblank"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required,notblank"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required,notblank"`
}

// CompletePaymentResponse is returned after a successful payment capture.
type CompletePaymentResponse struct {
	OrderID       string    `json:"order_id"`
	DownloadToken string    `json:"download_token"`
	DownloadURL   string    `json:"download_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/metrics"
	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/payment"
	"github.com/gaddamnithinreddy/templatestore/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	MarkPaid(ctx context.Context, tx database.TxQuerier, id string, paidAt time.Time) error
}

// CouponRedeemer validates and atomically consumes coupons.
type CouponRedeemer interface {
	Validate(ctx context.Context, code, email string) (*model.Coupon, error)
	Redeem(ctx context.Context, tx database.TxQuerier, code, email string) error
}

// TokenIssuer creates download tokens for completed purchases.
type TokenIssuer interface {
	IssueToken(ctx context.Context, templateID, orderID string) (*model.DownloadToken, error)
}

// Mailer delivers the download link after a successful purchase.
type Mailer interface {
	SendDownloadLink(to, templateName, downloadURL string, expiresAt time.Time) error
}

// AuditRecorder appends audit entries for completed purchases.
type AuditRecorder interface {
	Action(ctx context.Context, actorEmail, action, description, category string, details map[string]any)
}

// RazorpaySignatureVerifier checks Razorpay checkout callback signatures.
type RazorpaySignatureVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// CashfreeSignatureVerifier checks Cashfree webhook signatures.
type CashfreeSignatureVerifier interface {
	VerifyWebhookSignature(timestamp string, body []byte, signature string) bool
}

// OrderServiceConfig carries the non-repository collaborators of OrderService.
type OrderServiceConfig struct {
	Gateways       map[string]payment.Gateway
	RazorpayVerify RazorpaySignatureVerifier
	CashfreeVerify CashfreeSignatureVerifier
	RazorpayKeyID  string
	BaseURL        string // public base URL used to build download links
	Currency       string
}

// OrderService owns the checkout flow: order creation against a gateway and
// payment completion with atomic coupon redemption and token issuance.
type OrderService struct {
	pool      TxBeginner
	orders    OrderRepositoryInterface
	templates TemplateRepositoryInterface
	coupons   CouponRedeemer
	downloads TokenIssuer
	mailer    Mailer
	audit     AuditRecorder
	cfg       OrderServiceConfig
}

// NewOrderService creates an OrderService. mailer and audit may be nil;
// both are best-effort side channels.
func NewOrderService(pool *pgxpool.Pool, orders OrderRepositoryInterface, templates TemplateRepositoryInterface,
	coupons CouponRedeemer, downloads TokenIssuer, mailer Mailer, audit AuditRecorder, cfg OrderServiceConfig) *OrderService {
	return newOrderService(pool, orders, templates, coupons, downloads, mailer, audit, cfg)
}

// NewOrderServiceWithTxBeginner creates an OrderService with a custom
// TxBeginner. Primarily used for testing.
func NewOrderServiceWithTxBeginner(pool TxBeginner, orders OrderRepositoryInterface, templates TemplateRepositoryInterface,
	coupons CouponRedeemer, downloads TokenIssuer, mailer Mailer, audit AuditRecorder, cfg OrderServiceConfig) *OrderService {
	return newOrderService(pool, orders, templates, coupons, downloads, mailer, audit, cfg)
}

func newOrderService(pool TxBeginner, orders OrderRepositoryInterface, templates TemplateRepositoryInterface,
	coupons CouponRedeemer, downloads TokenIssuer, mailer Mailer, audit AuditRecorder, cfg OrderServiceConfig) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &OrderService{
		pool:      pool,
		orders:    orders,
		templates: templates,
		coupons:   coupons,
		downloads: downloads,
		mailer:    mailer,
		audit:     audit,
		cfg:       cfg,
	}
}

// Create validates the purchase, applies an optional coupon, opens a gateway
// order and persists the store order.
func (s *OrderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	template, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if template == nil || !template.IsActive {
		return nil, ErrTemplateNotFound
	}

	price := template.Price
	var discount float64
	couponCode := ""
	if req.CouponCode != "" {
		coupon, err := s.coupons.Validate(ctx, req.CouponCode, req.Email)
		if err != nil {
			return nil, err
		}
		discount = coupon.Discount(price)
		couponCode = coupon.Code
	}
	final := price - discount
	if final < 0 {
		final = 0
	}

	gateway, ok := s.cfg.Gateways[req.Gateway]
	if !ok {
		return nil, ErrUnknownGateway
	}

	orderID := uuid.NewString()
	gatewayOrder, err := gateway.CreateOrder(ctx, payment.CreateOrderParams{
		Receipt:       orderID,
		Amount:        final,
		Currency:      s.cfg.Currency,
		CustomerEmail: req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	order := &model.Order{
		ID:             orderID,
		TemplateID:     template.ID,
		Email:          req.Email,
		Amount:         price,
		DiscountAmount: discount,
		CouponCode:     couponCode,
		FinalAmount:    final,
		Gateway:        req.Gateway,
		GatewayOrderID: gatewayOrder.ID,
		Status:         model.OrderStatusCreated,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	resp := &model.CreateOrderResponse{
		OrderID:          order.ID,
		GatewayOrderID:   order.GatewayOrderID,
		Gateway:          order.Gateway,
		Amount:           order.Amount,
		DiscountAmount:   order.DiscountAmount,
		FinalAmount:      order.FinalAmount,
		Currency:         s.cfg.Currency,
		PaymentSessionID: gatewayOrder.PaymentSessionID,
	}
	if req.Gateway == model.GatewayRazorpay {
		resp.GatewayKeyID = s.cfg.RazorpayKeyID
	}
	return resp, nil
}

// CompletePayment verifies a Razorpay checkout callback and finalizes the
// order. Returns ErrPaymentVerification when the signature or order binding
// does not check out.
func (s *OrderService) CompletePayment(ctx context.Context, req *model.VerifyPaymentRequest) (*model.CompletePaymentResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == model.OrderStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}
	if order.GatewayOrderID != req.RazorpayOrderID {
		return nil, ErrPaymentVerification
	}
	if s.cfg.RazorpayVerify == nil ||
		!s.cfg.RazorpayVerify.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, ErrPaymentVerification
	}

	return s.finalize(ctx, order)
}

// cashfreeWebhook is the subset of the webhook payload the store reads.
type cashfreeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
	} `json:"data"`
}

// HandleCashfreeWebhook verifies and applies a Cashfree payment webhook.
// Non-success webhook types are acknowledged without effect. Replays of an
// already-paid order are acknowledged too; webhooks are delivered at least
// once.
func (s *OrderService) HandleCashfreeWebhook(ctx context.Context, timestamp, signature string, body []byte) error {
	if s.cfg.CashfreeVerify == nil ||
		!s.cfg.CashfreeVerify.VerifyWebhookSignature(timestamp, body, signature) {
		return ErrPaymentVerification
	}

	var hook cashfreeWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return fmt.Errorf("%w: malformed webhook body", ErrInvalidRequest)
	}
	if hook.Type != "PAYMENT_SUCCESS_WEBHOOK" {
		return nil
	}

	order, err := s.orders.GetByGatewayOrderID(ctx, hook.Data.Order.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status == model.OrderStatusPaid {
		return nil
	}

	_, err = s.finalize(ctx, order)
	if errors.Is(err, ErrOrderAlreadyPaid) {
		// A replay that raced another delivery past the status read above;
		// the losing transaction matched no row and changed nothing.
		return nil
	}
	return err
}

// finalize marks the order paid and redeems its coupon in one transaction,
// then issues the download token and sends the link. The guarded paid
// transition fails the losing side of a concurrent completion before it
// reaches the coupon, so the usage increment and token issuance happen
// exactly once per order.
func (s *OrderService) finalize(ctx context.Context, order *model.Order) (*model.CompletePaymentResponse, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.orders.MarkPaid(ctx, tx, order.ID, time.Now()); err != nil {
		return nil, err
	}
	if order.CouponCode != "" {
		if err := s.coupons.Redeem(ctx, tx, order.CouponCode, order.Email); err != nil {
			// A coupon that became unusable between checkout and capture
			// must not block a captured payment; drop it from the order.
			if isCouponRejection(err) {
				log.Warn().Err(err).
					Str("order_id", order.ID).
					Str("coupon_code", order.CouponCode).
					Msg("coupon no longer redeemable at capture time")
			} else {
				return nil, fmt.Errorf("redeem coupon: %w", err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	metrics.OrdersCompleted.WithLabelValues(order.Gateway).Inc()

	token, err := s.downloads.IssueToken(ctx, order.TemplateID, order.ID)
	if err != nil {
		return nil, fmt.Errorf("issue download token: %w", err)
	}
	downloadURL := s.cfg.BaseURL + "/downloads/" + token.Token

	if s.mailer != nil {
		templateName := order.TemplateID
		if t, err := s.templates.GetByID(ctx, order.TemplateID); err == nil && t != nil {
			templateName = t.Name
		}
		if err := s.mailer.SendDownloadLink(order.Email, templateName, downloadURL, token.ExpiresAt); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to send download email")
		}
	}

	if s.audit != nil {
		s.audit.Action(ctx, order.Email, "order.paid",
			"payment captured and download token issued", "payment",
			map[string]any{
				"order_id":    order.ID,
				"template_id": order.TemplateID,
				"gateway":     order.Gateway,
				"amount":      order.FinalAmount,
			})
	}

	return &model.CompletePaymentResponse{
		OrderID:       order.ID,
		DownloadToken: token.Token,
		DownloadURL:   downloadURL,
		ExpiresAt:     token.ExpiresAt,
	}, nil
}

// isCouponRejection reports whether err is one of the coupon validity
// rejections, as opposed to an infrastructure failure.
func isCouponRejection(err error) bool {
	for _, target := range []error{
		ErrCouponNotFound, ErrCouponInactive, ErrCouponNotYetActive,
		ErrCouponExpired, ErrUsageLimitReached, ErrEmailRestricted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

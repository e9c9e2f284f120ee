package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	cashfreeDefaultBaseURL    = "https://api.cashfree.com"
	cashfreeDefaultAPIVersion = "2023-08-01"
)

// CashfreeConfig holds Cashfree API credentials.
type CashfreeConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // overridable for tests
	APIVersion   string
}

// Cashfree talks to the Cashfree PG orders API and verifies webhook
// signatures.
type Cashfree struct {
	cfg    CashfreeConfig
	client *http.Client
}

// NewCashfree creates a Cashfree gateway client.
func NewCashfree(cfg CashfreeConfig) *Cashfree {
	if cfg.BaseURL == "" {
		cfg.BaseURL = cashfreeDefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = cashfreeDefaultAPIVersion
	}
	return &Cashfree{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Gateway.
func (g *Cashfree) Name() string { return "cashfree" }

// CreateOrder opens an order with Cashfree. The store order id doubles as
// the gateway order id; Cashfree echoes it and returns a payment session.
func (g *Cashfree) CreateOrder(ctx context.Context, p CreateOrderParams) (*GatewayOrder, error) {
	payload, err := json.Marshal(map[string]any{
		"order_id":       p.Receipt,
		"order_amount":   p.Amount,
		"order_currency": p.Currency,
		"customer_details": map[string]any{
			"customer_id":    p.Receipt,
			"customer_email": p.CustomerEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cashfree order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/pg/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build cashfree request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", g.cfg.ClientID)
	req.Header.Set("x-client-secret", g.cfg.ClientSecret)
	req.Header.Set("x-api-version", g.cfg.APIVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cashfree create order: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		OrderID          string `json:"order_id"`
		PaymentSessionID string `json:"payment_session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode cashfree order: %w", err)
	}
	if out.PaymentSessionID == "" {
		return nil, fmt.Errorf("cashfree order response missing payment session")
	}
	return &GatewayOrder{ID: out.OrderID, PaymentSessionID: out.PaymentSessionID}, nil
}

// VerifyWebhookSignature checks a Cashfree webhook signature:
// base64(HMAC-SHA256(timestamp + raw_body, client_secret)).
// Comparison is constant-time.
func (g *Cashfree) VerifyWebhookSignature(timestamp string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.cfg.ClientSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const razorpayDefaultBaseURL = "https://api.razorpay.com"

// RazorpayConfig holds Razorpay API credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string // overridable for tests
}

// Razorpay talks to the Razorpay orders API and verifies checkout signatures.
type Razorpay struct {
	cfg    RazorpayConfig
	client *http.Client
}

// NewRazorpay creates a Razorpay gateway client.
func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = razorpayDefaultBaseURL
	}
	return &Razorpay{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Gateway.
func (g *Razorpay) Name() string { return "razorpay" }

// KeyID returns the public key id clients need to open checkout.
func (g *Razorpay) KeyID() string { return g.cfg.KeyID }

// CreateOrder opens an order with Razorpay. Amounts are sent in paise.
func (g *Razorpay) CreateOrder(ctx context.Context, p CreateOrderParams) (*GatewayOrder, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   int64(math.Round(p.Amount * 100)),
		"currency": p.Currency,
		"receipt":  p.Receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal razorpay order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build razorpay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("razorpay create order: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode razorpay order: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}
	return &GatewayOrder{ID: out.ID}, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256(order_id + "|" + payment_id, key_secret), hex-encoded.
// Comparison is constant-time.
func (g *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completePayment drives POST /api/payments/verify for a seeded order with a
// self-computed signature, returning the HTTP status code.
func completePayment(t *testing.T, orderID, paymentID string) int {
	t.Helper()
	resp, err := postJSON(formatURL("/api/payments/verify"), map[string]string{
		"order_id":            orderID,
		"razorpay_order_id":   "gw_" + orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  razorpaySignature("gw_"+orderID, paymentID),
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func couponUsageCount(t *testing.T, code string) int {
	t.Helper()
	ctx, cancel := contextWithTimeout(t)
	defer cancel()

	var count int
	err := testPool.QueryRow(ctx,
		"SELECT usage_count FROM coupons WHERE code = $1", code).Scan(&count)
	require.NoError(t, err)
	return count
}

// TestConcurrentCapturesLastCouponUse verifies usage-limit enforcement under
// concurrency: given a coupon with one remaining use and two orders carrying
// it, when both payments are captured simultaneously, the usage counter ends
// at exactly 1 (never over the limit) while both captured payments complete.
func TestConcurrentCapturesLastCouponUse(t *testing.T) {
	cleanupTables(t)

	createTestTemplate(t, "tpl-conc", "invoice-bot", 1000, true)
	limit := 1
	createTestCoupon(t, "LASTUSE", "percentage", 20,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), &limit, "")
	createTestOrder(t, "order-a", "tpl-conc", "LASTUSE", 1000, 800)
	createTestOrder(t, "order-b", "tpl-conc", "LASTUSE", 1000, 800)

	var wg sync.WaitGroup
	statuses := make(chan int, 2)
	for _, id := range []string{"order-a", "order-b"} {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			statuses <- completePayment(t, orderID, "pay_"+orderID)
		}(id)
	}
	wg.Wait()
	close(statuses)

	// A coupon that ran out between checkout and capture never blocks the
	// captured payment, so both completions succeed.
	for status := range statuses {
		assert.Equal(t, http.StatusOK, status, "Captured payments should complete")
	}

	assert.Equal(t, 1, couponUsageCount(t, "LASTUSE"),
		"usage_count should be exactly 1, never past the limit")

	ctx, cancel := contextWithTimeout(t)
	defer cancel()
	var paid, tokens int
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT COUNT(*) FROM orders WHERE status = 'paid'").Scan(&paid))
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT COUNT(*) FROM download_tokens").Scan(&tokens))
	assert.Equal(t, 2, paid, "Both orders should be paid")
	assert.Equal(t, 2, tokens, "One download token per order")
}

// TestConcurrentCompletionsSameOrder verifies the single-shot paid transition:
// the same checkout callback delivered twice in parallel finalizes the order
// once: one 200, one 409, one coupon use, one download token.
func TestConcurrentCompletionsSameOrder(t *testing.T) {
	cleanupTables(t)

	createTestTemplate(t, "tpl-replay", "invoice-bot", 1000, true)
	limit := 5
	createTestCoupon(t, "REPLAY20", "percentage", 20,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), &limit, "")
	createTestOrder(t, "order-replay", "tpl-replay", "REPLAY20", 1000, 800)

	var wg sync.WaitGroup
	statuses := make(chan int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses <- completePayment(t, "order-replay", "pay_replay")
		}()
	}
	wg.Wait()
	close(statuses)

	var ok, conflict, other int
	for status := range statuses {
		switch status {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		default:
			other++
			t.Logf("Unexpected status: %d", status)
		}
	}
	assert.Equal(t, 1, ok, "Exactly one completion should succeed")
	assert.Equal(t, 1, conflict, "Exactly one completion should conflict")
	assert.Equal(t, 0, other, "No other statuses should occur")

	assert.Equal(t, 1, couponUsageCount(t, "REPLAY20"),
		"Coupon must be redeemed exactly once per completed order")

	ctx, cancel := contextWithTimeout(t)
	defer cancel()
	var tokens int
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT COUNT(*) FROM download_tokens WHERE order_id = $1",
		"order-replay").Scan(&tokens))
	assert.Equal(t, 1, tokens, "Exactly one download token should exist")
}

// TestConcurrentCapturesDrainCouponExactly verifies row-lock serialization at
// scale: a coupon with 3 uses left and 5 simultaneous captures ends with
// usage_count exactly at the limit, not past it.
func TestConcurrentCapturesDrainCouponExactly(t *testing.T) {
	cleanupTables(t)

	createTestTemplate(t, "tpl-drain", "invoice-bot", 1000, true)
	limit := 3
	concurrent := 5
	createTestCoupon(t, "DRAIN3", "percentage", 20,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), &limit, "")
	for i := 0; i < concurrent; i++ {
		createTestOrder(t, fmt.Sprintf("order-%d", i), "tpl-drain", "DRAIN3", 1000, 800)
	}

	var wg sync.WaitGroup
	statuses := make(chan int, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			statuses <- completePayment(t, orderID, "pay_"+orderID)
		}(fmt.Sprintf("order-%d", i))
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status, "Captured payments should complete")
	}

	assert.Equal(t, limit, couponUsageCount(t, "DRAIN3"),
		"usage_count should stop exactly at the limit")
}

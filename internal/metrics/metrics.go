// Package metrics exposes Prometheus counters for the store's hot paths.
package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Downloads counts download redemptions by outcome code.
	Downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "templatestore",
		Name:      "downloads_total",
		Help:      "Download token redemptions by outcome.",
	}, []string{"outcome"})

	// CouponVerifications counts coupon verification calls by outcome.
	CouponVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "templatestore",
		Name:      "coupon_verifications_total",
		Help:      "Coupon verification requests by outcome.",
	}, []string{"outcome"})

	// OrdersCompleted counts successfully captured orders by gateway.
	OrdersCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "templatestore",
		Name:      "orders_completed_total",
		Help:      "Orders captured by payment gateway.",
	}, []string{"gateway"})
)

// Handler serves the Prometheus scrape endpoint through Fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

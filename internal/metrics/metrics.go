package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Order metrics
	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		},
	)
	OrdersPaidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "Total number of orders confirmed as paid",
		},
	)

	// Sale code metrics
	SaleEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_evaluations_total",
			Help: "Total number of sale code evaluations by outcome",
		},
		[]string{"outcome"},
	)
	SaleRedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_redemptions_total",
			Help: "Total number of confirmed sale code redemptions",
		},
	)

	// Payment webhook metrics
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Total number of payment webhooks received by result",
		},
		[]string{"result"},
	)
	WebhookAmountMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_amount_mismatch_total",
			Help: "Webhooks whose transferred amount did not match the order total",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(OrdersPaidTotal)

	prometheus.MustRegister(SaleEvaluationsTotal)
	prometheus.MustRegister(SaleRedemptionsTotal)

	prometheus.MustRegister(WebhooksTotal)
	prometheus.MustRegister(WebhookAmountMismatchTotal)
}

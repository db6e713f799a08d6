package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the counters below.
const (
	OutcomeOK       = "ok"
	OutcomeDeduped  = "deduped"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics groups the service collectors.
type Metrics struct {
	WebhookEvents     *prometheus.CounterVec
	SignatureFailures *prometheus.CounterVec
	CheckoutRequests  *prometheus.CounterVec
	ProcessorLatency  *prometheus.HistogramVec
	RelayPublished    *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_webhook_events_total",
				Help: "Webhook deliveries by event type and outcome",
			},
			[]string{"type", "outcome"},
		),
		SignatureFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_webhook_signature_failures_total",
				Help: "Webhook deliveries rejected during signature verification",
			},
			[]string{"reason"},
		),
		CheckoutRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_checkout_requests_total",
				Help: "Checkout session requests by outcome",
			},
			[]string{"outcome"},
		),
		ProcessorLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paygate_processor_request_duration_seconds",
				Help:    "Latency of payment processor API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "status"},
		),
		RelayPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paygate_relay_messages_total",
				Help: "Paid order notifications by outcome",
			},
			[]string{"outcome"},
		),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksTotal counts webhook requests by terminal result
	// (forwarded, ignored, unauthorized, malformed, sink_rejected...).
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charge_relay_webhooks_total",
			Help: "Total number of webhook requests by result",
		},
		[]string{"result"},
	)

	WebhookBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charge_relay_webhook_bytes_total",
			Help: "Total bytes of verified webhook bodies received",
		},
	)

	ForwardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "charge_relay_forward_duration_seconds",
			Help:    "Duration of sink forwarding attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charge_relay_rate_limit_hits_total",
			Help: "Total number of webhook requests rejected by the rate limiter",
		},
	)
)

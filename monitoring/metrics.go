package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_initiated_total",
			Help: "Purchase initiations by outcome",
		},
		[]string{"status"},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Payment confirmations by trigger and outcome",
		},
		[]string{"trigger", "status"},
	)

	webhookSignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_failures_total",
			Help: "Webhook deliveries rejected for a bad signature",
		},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total issued tickets",
		},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Transactional emails by kind and outcome",
		},
		[]string{"kind", "status"},
	)
)

func TrackPurchaseInitiated(status string) {
	purchasesInitiated.WithLabelValues(status).Inc()
}

func TrackPaymentConfirmed(trigger, status string) {
	paymentsConfirmed.WithLabelValues(trigger, status).Inc()
}

func TrackWebhookSignatureFailure() {
	webhookSignatureFailures.Inc()
}

func TrackTicketsIssued(count int) {
	ticketsIssued.Add(float64(count))
}

func TrackGatewayRequest(operation string, duration time.Duration) {
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func TrackEmailSent(kind, status string) {
	emailsSent.WithLabelValues(kind, status).Inc()
}

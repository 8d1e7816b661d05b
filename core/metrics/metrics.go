package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents tracks inbound webhook traffic per event name.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pms_sync_webhook_events_total",
		Help: "Total number of webhook events received, by event name",
	}, []string{"event"})

	// ReconcileResults tracks the outcome of every reconciliation pass.
	// Labels: created, updated, stale, requeued, failed.
	ReconcileResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pms_sync_reconcile_total",
		Help: "Total number of reservation reconciliations, by result",
	}, []string{"result"})

	// VendorRequests tracks calls to the booking vendor API.
	VendorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pms_sync_vendor_requests_total",
		Help: "Total number of vendor API requests, by method and outcome",
	}, []string{"method", "outcome"})

	// VendorRequestDuration measures vendor API latency.
	VendorRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pms_sync_vendor_request_seconds",
		Help:    "Duration of vendor API requests in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// CommandBacklog tracks the number of due commands in the outbox table.
	CommandBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pms_sync_command_backlog",
		Help: "Current number of pending commands in the sync outbox",
	})
)

// ObserveVendorRequest records one vendor API call.
func ObserveVendorRequest(method, outcome string, elapsed time.Duration) {
	VendorRequests.WithLabelValues(method, outcome).Inc()
	VendorRequestDuration.Observe(elapsed.Seconds())
}

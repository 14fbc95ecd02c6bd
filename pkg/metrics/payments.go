package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records webhook ingest and reconciliation poll outcomes.
type PaymentMetrics struct {
	webhookEvents   *prometheus.CounterVec
	pollDuration    *prometheus.HistogramVec
	pollOutcomes    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Gateway webhook deliveries by result.",
	}, []string{"result"})
	pollDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_poll_duration_seconds",
		Help:    "Duration of gateway reconciliation polls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	pollOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_poll_outcomes_total",
		Help: "Terminal outcomes observed by the reconciliation poller.",
	}, []string{"outcome"})
	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_transitions_total",
		Help: "Applied purchase status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(webhookEvents, pollDuration, pollOutcomes, transitionTotal)
	return &PaymentMetrics{
		webhookEvents:   webhookEvents,
		pollDuration:    pollDuration,
		pollOutcomes:    pollOutcomes,
		transitionTotal: transitionTotal,
	}
}

// IncWebhookEvent counts one webhook delivery with the given result label.
func (m *PaymentMetrics) IncWebhookEvent(result string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObservePoll records a completed poll loop.
func (m *PaymentMetrics) ObservePoll(outcome string, duration time.Duration) {
	if m == nil || m.pollDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.pollDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.pollOutcomes.WithLabelValues(label).Inc()
}

// IncTransition counts one applied purchase transition.
func (m *PaymentMetrics) IncTransition(from, to string) {
	if m == nil || m.transitionTotal == nil {
		return
	}
	m.transitionTotal.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

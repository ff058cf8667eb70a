package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publish-loop metadata for the outbox worker.
type OutboxMetrics struct {
	batchDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	pending       prometheus.Gauge
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Events published to the broker.",
	}, []string{"topic", "event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Events that failed to publish.",
	}, []string{"topic", "event_type"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_events_pending",
		Help: "Events waiting in the outbox table.",
	})
	reg.MustRegister(batchDuration, published, failed, pending)
	return &OutboxMetrics{
		batchDuration: batchDuration,
		published:     published,
		failed:        failed,
		pending:       pending,
	}
}

// ObserveBatch records the duration of one publish batch.
func (o *OutboxMetrics) ObserveBatch(topic string, elapsed time.Duration) {
	if o == nil || o.batchDuration == nil {
		return
	}
	o.batchDuration.WithLabelValues(normalizeLabel(topic)).Observe(elapsed.Seconds())
}

// IncPublished increments the published counter for an event type.
func (o *OutboxMetrics) IncPublished(topic, eventType string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(topic), normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for an event type.
func (o *OutboxMetrics) IncFailed(topic, eventType string) {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.WithLabelValues(normalizeLabel(topic), normalizeLabel(eventType)).Inc()
}

// SetPending records the current outbox backlog size.
func (o *OutboxMetrics) SetPending(count float64) {
	if o == nil || o.pending == nil {
		return
	}
	o.pending.Set(count)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	PushesSent      *prometheus.CounterVec
	PushesFailed    *prometheus.CounterVec
	DispatchLatency *prometheus.HistogramVec
	TokensDisabled  prometheus.Counter
	QueueDepth      prometheus.GaugeFunc
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, queueDepth func() int) *Metrics {
	m := &Metrics{
		PushesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pushes_sent_total",
			Help: "Queue rows whose multicast reached at least one device.",
		}, []string{"event_type"}),

		PushesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pushes_failed_total",
			Help: "Queue rows that ended in failed status.",
		}, []string{"event_type"}),

		DispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "push_dispatch_seconds",
			Help:    "Pipeline latency from dequeue to reconciled outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"event_type"}),

		TokensDisabled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "device_tokens_disabled_total",
			Help: "Device tokens disabled after the transport rejected them.",
		}),

		QueueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Rows currently waiting in the dispatch queue.",
		}, func() float64 { return float64(queueDepth()) }),
	}

	reg.MustRegister(
		m.PushesSent,
		m.PushesFailed,
		m.DispatchLatency,
		m.TokensDisabled,
		m.QueueDepth,
	)

	return m
}

// Hooks returns the metric callbacks expected by service.MetricHooks.
// Centralises the prometheus observation calls so the service stays
// metrics-agnostic.
func (m *Metrics) Hooks() (
	onSent func(domain.EventType, time.Duration),
	onFailed func(domain.EventType),
	onTokenDisabled func(),
) {
	onSent = func(e domain.EventType, latency time.Duration) {
		m.PushesSent.WithLabelValues(string(e)).Inc()
		m.DispatchLatency.WithLabelValues(string(e)).Observe(latency.Seconds())
	}
	onFailed = func(e domain.EventType) {
		m.PushesFailed.WithLabelValues(string(e)).Inc()
	}
	onTokenDisabled = func() {
		m.TokensDisabled.Inc()
	}
	return
}

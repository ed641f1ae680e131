package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shorts/internal/compose"
)

// Metrics holds Prometheus counters for the compositor service.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    prometheus.Counter
	errorsTotal      prometheus.Counter
	plansTotal       *prometheus.CounterVec
	captionsDegraded prometheus.Counter
	jobFailures      *prometheus.CounterVec
	encodesTotal     *prometheus.CounterVec
	encodeSeconds    prometheus.Histogram
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		plansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shorts_plans_total",
			Help: "Render plans emitted, by layout and audio mode",
		}, []string{"layout", "audio"}),
		captionsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_caption_data_degraded_total",
			Help: "Plans whose captions used fallback timings",
		}),
		jobFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shorts_job_failures_total",
			Help: "Jobs rejected or failed, by error kind",
		}, []string{"kind"}),
		encodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shorts_encodes_total",
			Help: "Encode attempts, by outcome",
		}, []string{"outcome"}),
		encodeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shorts_encode_duration_seconds",
			Help:    "Wall time spent per encode attempt",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.plansTotal,
		m.captionsDegraded,
		m.jobFailures,
		m.encodesTotal,
		m.encodeSeconds,
	)
	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObservePlan records an emitted plan.
func (m *Metrics) ObservePlan(plan compose.RenderPlan) {
	m.plansTotal.WithLabelValues(string(plan.Layout), string(plan.Audio.Mode)).Inc()
	if plan.Degraded() {
		m.captionsDegraded.Inc()
	}
}

// ObserveFailure records a failed job by error kind.
func (m *Metrics) ObserveFailure(err error) {
	m.jobFailures.WithLabelValues(string(compose.Kind(err))).Inc()
}

// EncodeFinished records an encode outcome.
func (m *Metrics) EncodeFinished(outcome string, elapsed time.Duration) {
	m.encodesTotal.WithLabelValues(outcome).Inc()
	m.encodeSeconds.Observe(elapsed.Seconds())
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

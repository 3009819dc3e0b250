// Package metrics provides Prometheus metrics for the conversation
// engine and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter collects engine metrics and serves them in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// Conversation metrics
	messages       *prometheus.CounterVec
	respondLatency *prometheus.HistogramVec
	sessionsActive prometheus.Gauge
	crisisHits     prometheus.Counter

	// Wisdom and next-step metrics
	wisdomSelections *prometheus.CounterVec
	suggestions      *prometheus.CounterVec

	// Profile metrics
	merges       *prometheus.CounterVec
	mergeLatency prometheus.Histogram

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration. The engine is
// pure computation, so the buckets skew far smaller than typical
// request-latency buckets.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
}

// NewExporter creates a new metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "messages_total",
			Help:      "Total user messages processed",
		},
		[]string{"mood", "intent", "phase"},
	)

	e.respondLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "respond_seconds",
			Help:      "Response assembly latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"phase"},
	)

	e.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "sessions_active",
			Help:      "Number of live conversation sessions",
		},
	)

	e.crisisHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "crisis_total",
			Help:      "Total messages answered with the safety payload",
		},
	)

	e.wisdomSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "wisdom_selections_total",
			Help:      "Total wisdom entries spliced into replies",
		},
		[]string{"phase", "principle"},
	)

	e.suggestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "suggestions_total",
			Help:      "Total next-step suggestions issued",
		},
		[]string{"tool", "target"},
	)

	e.merges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "profile_merges_total",
			Help:      "Total profile merges performed",
		},
		[]string{"status"},
	)

	e.mergeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mindvibe",
			Subsystem: "engine",
			Name:      "profile_merge_seconds",
			Help:      "Profile merge latency in seconds, storage included",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindvibe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	e.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mindvibe",
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		e.messages,
		e.respondLatency,
		e.sessionsActive,
		e.crisisHits,
		e.wisdomSelections,
		e.suggestions,
		e.merges,
		e.mergeLatency,
		e.httpRequests,
		e.httpLatency,
	)

	return e
}

// RecordMessage records one processed user message.
func (e *Exporter) RecordMessage(mood, intent, phase string, latency time.Duration) {
	e.messages.WithLabelValues(mood, intent, phase).Inc()
	e.respondLatency.WithLabelValues(phase).Observe(latency.Seconds())
}

// RecordCrisis records a message answered with the safety payload.
func (e *Exporter) RecordCrisis() {
	e.crisisHits.Inc()
}

// RecordWisdom records a wisdom entry used in a reply.
func (e *Exporter) RecordWisdom(phase, principle string) {
	e.wisdomSelections.WithLabelValues(phase, principle).Inc()
}

// RecordSuggestion records a next-step suggestion issued at session end.
func (e *Exporter) RecordSuggestion(tool, target string) {
	e.suggestions.WithLabelValues(tool, target).Inc()
}

// RecordMerge records a profile merge and its end-to-end latency.
func (e *Exporter) RecordMerge(latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.merges.WithLabelValues(status).Inc()
	e.mergeLatency.Observe(latency.Seconds())
}

// SetActiveSessions sets the live session gauge.
func (e *Exporter) SetActiveSessions(count int) {
	e.sessionsActive.Set(float64(count))
}

// RecordHTTPRequest records one served HTTP request. The path should be
// the route template, not the raw URL, to keep cardinality bounded.
func (e *Exporter) RecordHTTPRequest(method, path string, status int, latency time.Duration) {
	e.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	e.httpLatency.WithLabelValues(method, path).Observe(latency.Seconds())
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// Registry returns the underlying Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

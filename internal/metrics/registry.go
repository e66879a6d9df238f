// Package metrics exposes Prometheus counters for the analysis pipeline and
// the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application. It satisfies
// parser.Recorder.
type Registry struct {
	// Analysis Metrics
	ComponentsClassified *prometheus.CounterVec
	EdgesEmitted         *prometheus.CounterVec
	UnresolvedReferences prometheus.Counter
	AnalysesTotal        *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized. Each registry
// owns its own Prometheus registry, so tests never collide.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initAnalysisMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initAnalysisMetrics() {
	r.ComponentsClassified = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentscope_components_classified_total",
			Help: "Components classified, by label",
		},
		[]string{"label"},
	)

	r.EdgesEmitted = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentscope_dialog_edges_total",
			Help: "Dialog graph edges emitted, by kind",
		},
		[]string{"kind"},
	)

	r.UnresolvedReferences = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "agentscope_unresolved_references_total",
			Help: "Dialog references that matched no known dialog",
		},
	)

	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentscope_analyses_total",
			Help: "Analysis requests, by operation and outcome",
		},
		[]string{"operation", "status"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentscope_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentscope_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "agentscope_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) ComponentClassified(label string) {
	r.ComponentsClassified.WithLabelValues(label).Inc()
}

func (r *Registry) EdgeEmitted(kind string) {
	r.EdgesEmitted.WithLabelValues(kind).Inc()
}

func (r *Registry) ReferenceUnresolved() {
	r.UnresolvedReferences.Inc()
}

// RecordAnalysis counts one analysis request.
func (r *Registry) RecordAnalysis(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.AnalysesTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

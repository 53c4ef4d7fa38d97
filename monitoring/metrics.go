// Package monitoring exposes Prometheus metrics for predictions, artifact
// loading and the HTTP API.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many as they like. All
// methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec
	predictionFailures *prometheus.CounterVec
	predictionDuration prometheus.Histogram

	artifactFetches *prometheus.CounterVec
	artifactLoads   *prometheus.CounterVec
	artifactCache   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_predictions_total",
				Help: "Completed predictions by result",
			},
			[]string{"result"},
		),
		predictionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_prediction_failures_total",
				Help: "Failed predictions by error code",
			},
			[]string{"code"},
		),
		predictionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "churn_prediction_duration_seconds",
				Help:    "Time spent in the prediction pipeline",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		artifactFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_artifact_fetches_total",
				Help: "Artifact source reads by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		artifactLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_artifact_loads_total",
				Help: "Artifact pair loads by outcome",
			},
			[]string{"outcome"},
		),
		artifactCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_artifact_cache_lookups_total",
				Help: "Artifact cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_http_requests_total",
				Help: "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "churn_http_request_duration_seconds",
				Help: "HTTP request latency",
			},
			[]string{"method", "path"},
		),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.predictions,
		m.predictionFailures,
		m.predictionDuration,
		m.artifactFetches,
		m.artifactLoads,
		m.artifactCache,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry is exposed for tests and for callers that add their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePrediction counts a scored request by result and records its latency.
func (m *Metrics) ObservePrediction(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(result).Inc()
	m.predictionDuration.Observe(d.Seconds())
}

// ObservePredictionFailure counts a failed request by error code.
func (m *Metrics) ObservePredictionFailure(code string) {
	if m == nil {
		return
	}
	m.predictionFailures.WithLabelValues(code).Inc()
}

// ObserveArtifactFetch counts one fetch by transport and outcome.
func (m *Metrics) ObserveArtifactFetch(transport, outcome string) {
	if m == nil {
		return
	}
	m.artifactFetches.WithLabelValues(transport, outcome).Inc()
}

// ObserveArtifactLoad counts one decode of a locator pair.
func (m *Metrics) ObserveArtifactLoad(outcome string) {
	if m == nil {
		return
	}
	m.artifactLoads.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts an artifact cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.artifactCache.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Uptime returns the time since NewMetrics was called.
func (m *Metrics) Uptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime)
}

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mj1618/keyword-server/internal/keyword"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	procedureCalls  *prometheus.CounterVec
	keywordRuns     *prometheus.CounterVec
	keywordDuration *prometheus.HistogramVec
}

// NewMetrics registers the server collectors on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		procedureCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_server",
			Name:      "procedure_calls_total",
			Help:      "Remote procedure calls by procedure and outcome.",
		}, []string{"procedure", "outcome"}),
		keywordRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyword_server",
			Name:      "keyword_runs_total",
			Help:      "Keyword invocations by status and failure kind.",
		}, []string{"status", "kind"}),
		keywordDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "keyword_server",
			Name:      "keyword_duration_seconds",
			Help:      "Keyword invocation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeProcedure(procedure, outcome string) {
	if m == nil {
		return
	}
	m.procedureCalls.WithLabelValues(procedure, outcome).Inc()
}

// ObserveKeyword is a keyword.Observer.
func (m *Metrics) ObserveKeyword(_ string, res keyword.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	kind := "none"
	if res.Status == keyword.StatusFail {
		kind = res.Kind.String()
	}
	m.keywordRuns.WithLabelValues(string(res.Status), kind).Inc()
	m.keywordDuration.WithLabelValues(string(res.Status)).Observe(elapsed.Seconds())
}

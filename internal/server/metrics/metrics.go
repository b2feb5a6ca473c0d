// Package metrics exposes Prometheus instrumentation for auth operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vidtube"

// AuthMetrics counts auth operations by outcome and times them. Outcome is
// "ok" or the stable error kind.
type AuthMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func NewAuthMetrics() *AuthMetrics {
	m := &AuthMetrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "operations_total",
				Help:      "Auth operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "operation_duration_seconds",
				Help:      "Auth operation latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		m.operations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one finished operation.
func (m *AuthMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, common.KindOf(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *AuthMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsSet carries the per-App Prometheus collectors. Each App owns its
// registry so tests can build as many instances as they like.
type metricsSet struct {
	registry *prometheus.Registry
	jobs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metricsSet {
	m := &metricsSet{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fontgen_jobs_total",
			Help: "Generation jobs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fontgen_duration_seconds",
			Help:    "Wall-clock duration of generation jobs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	m.registry.MustRegister(m.jobs, m.duration)
	return m
}

func (m *metricsSet) observe(outcome string, took time.Duration) {
	m.jobs.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
}

// Metrics exposes the Prometheus exposition endpoint.
func (a *App) Metrics() http.Handler {
	return promhttp.HandlerFor(a.metrics.registry, promhttp.HandlerOpts{})
}

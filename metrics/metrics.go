// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and a handful of domain counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors on a caller-supplied registry so tests can
// run isolated registries side by side.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	signupsTotal       prometheus.Counter
	loginsTotal        prometheus.Counter
	blogMutationsTotal *prometheus.CounterVec
}

// New registers the collectors on the given registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		signupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Accounts created through either enrollment path.",
		}),
		loginsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Successful logins.",
		}),
		blogMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_mutations_total",
			Help: "Blog writes by operation.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.signupsTotal,
		m.loginsTotal,
		m.blogMutationsTotal,
	)
	return m
}

// ObserveSignup counts a created account.
func (m *Metrics) ObserveSignup() { m.signupsTotal.Inc() }

// ObserveLogin counts a successful login.
func (m *Metrics) ObserveLogin() { m.loginsTotal.Inc() }

// ObserveBlogMutation counts a blog write: create, update, delete or
// comment.
func (m *Metrics) ObserveBlogMutation(operation string) {
	m.blogMutationsTotal.WithLabelValues(operation).Inc()
}

// statusRecorder captures the response status for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records a counter and latency observation per request, labeled
// with the chi route pattern rather than the raw path so ids do not blow up
// the cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-route request counts and latency.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "students_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "students_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "students_http_errors_total",
			Help: "Total number of error responses (status >= 400).",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.requests, m.latency, m.errors)
	return m
}

// unmatchedRoute labels requests that reached no mux pattern.
const unmatchedRoute = "unmatched"

// observe records one completed request. The route label is the matched
// ServeMux pattern rather than the raw path, which keeps label cardinality
// bounded.
func (m *Metrics) observe(r *http.Request, status int, d time.Duration) {
	route := r.Pattern
	if route == "" {
		route = unmatchedRoute
	}

	code := strconv.Itoa(status)
	m.requests.WithLabelValues(r.Method, route, code).Inc()
	m.latency.WithLabelValues(r.Method, route).Observe(d.Seconds())
	if status >= http.StatusBadRequest {
		m.errors.WithLabelValues(r.Method, route, code).Inc()
	}
}

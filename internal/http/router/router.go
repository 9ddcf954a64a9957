// Package router builds the application's http.Handler: the route table,
// the middleware chain, metrics and CORS.
package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/student-records/internal/http/handlers/health"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// Options tunes the optional parts of the handler.
type Options struct {
	// CORSOrigins enables CORS for these origins; empty disables CORS.
	CORSOrigins []string

	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string

	// Registry receives the HTTP metrics. When nil a fresh registry with
	// the Go and process collectors is used.
	Registry *prometheus.Registry
}

// New returns the full handler for the service.
//
// Route table:
//
//	GET    /api/students        → list all students
//	GET    /api/students/{id}   → get one student by ID
//	POST   /api/students        → create a new student
//	PUT    /api/students/{id}   → partially update a student
//	DELETE /api/students/{id}   → delete a student
//	GET    /healthz             → database liveness
//	/                           → 404 envelope for everything else
func New(store storage.Storage, log zerolog.Logger, opts Options) http.Handler {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := middleware.NewMetrics(reg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/students", student.GetList(store))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	mux.HandleFunc("POST /api/students", student.New(store))
	mux.HandleFunc("PUT /api/students/{id}", student.Update(store))
	mux.HandleFunc("DELETE /api/students/{id}", student.Delete(store))
	mux.HandleFunc("GET /healthz", health.Check(store))

	if opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	// "/" matches every request no other pattern claims, including known
	// paths with an unsupported method.
	mux.HandleFunc("/", student.NotFound)

	// Recoverer sits inside AccessLog so a panic is logged and counted as
	// a 500 under the route that raised it.
	h := middleware.Chain(mux,
		middleware.RequestID(log),
		middleware.AccessLog(metrics),
		middleware.Recoverer,
	)

	if len(opts.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
		}).Handler(h)
	}

	return h
}

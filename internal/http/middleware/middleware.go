// Package middleware holds the net/http middleware wrapped around the
// student routes: request ids, access logging, panic recovery and
// Prometheus metrics.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates a UUID, echoes it
// on the response and attaches a child of base carrying request_id to the
// request context. Handlers log through zerolog.Ctx(r.Context()).
func RequestID(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			log := base.With().Str("request_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
		})
	}
}

// AccessLog writes one line per completed request and, when m is not nil,
// records the request in m under the route pattern the mux matched.
//
// Everything between AccessLog and the ServeMux must pass the request
// through unchanged, otherwise r.Pattern is not visible here.
func AccessLog(m *Metrics) func(http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		// Nothing written means net/http sends an empty 200.
		if status == 0 {
			status = http.StatusOK
		}

		log := hlog.FromRequest(r)
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", r.Pattern).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request completed")

		if m != nil {
			m.observe(r, status, d)
		}
	})
}

// startWatcher notes whether the response has started.
type startWatcher struct {
	http.ResponseWriter
	started bool
}

func (w *startWatcher) WriteHeader(status int) {
	w.started = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *startWatcher) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startWatcher) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Recoverer turns a panic in next into a 500 error envelope, unless the
// response has already started. http.ErrAbortHandler is re-raised so
// net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &startWatcher{ResponseWriter: w}

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}

			hlog.FromRequest(r).Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")

			if !sw.started {
				_ = response.WriteJSON(sw, http.StatusInternalServerError,
					response.Error(response.MsgInternalError))
			}
		}()

		next.ServeHTTP(sw, r)
	})
}

// Chain applies middlewares so that the first one listed is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

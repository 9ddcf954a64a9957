// Package health serves the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Pinger is the part of storage.Storage the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// pingTimeout bounds how long a health probe waits on the database.
const pingTimeout = 2 * time.Second

// Check handles GET /healthz: 200 when the database answers, 503 otherwise.
func Check(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Error("database unavailable"))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message("ok", nil))
	}
}

// Package logger builds the application's zerolog logger.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/student-records/internal/config"
)

// New returns a logger for env writing to w.
func New(env string, w io.Writer) zerolog.Logger {
	switch env {
	case config.EnvProd:
		return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	case config.EnvStaging:
		return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	default:
		console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		return zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
}

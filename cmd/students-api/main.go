// main is the entry point of the student records API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file and/or environment)
//  2. Initialise the logger
//  3. Open the configured store and create the students table if absent
//  4. Build the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/router"
	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/postgres"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.Env, os.Stdout)
	log.Info().
		Str("env", cfg.Env).
		Str("version", version).
		Msg("starting students-api")

	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise storage")
		os.Exit(1)
	}
	defer store.Close()

	log.Info().Str("driver", cfg.Storage.Driver).Msg("storage initialised")

	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: router.New(store, log, router.Options{
			CORSOrigins: cfg.HTTPServer.CORSOrigins,
			MetricsPath: cfg.HTTPServer.MetricsPath,
		}),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTPServer.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if err := waitForShutdown(server, cfg.HTTPServer, log, serverErr); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		store.Close()
		os.Exit(1)
	}

	log.Info().Msg("server stopped gracefully")
}

// openStorage picks the backend named by cfg.Storage.Driver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// lets in-flight requests finish within the configured deadline.
func waitForShutdown(server *http.Server, cfg config.HTTPServer, log zerolog.Logger, serverErr <-chan error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package main is the entry point for the Showroom server application.
//
// Showroom groups vehicle listings into clusters of similar products and
// precomputes two recommendation lists per product: nearest-price members of
// the same cluster, and products co-visited by the same users. Lists are
// recomputed by a scheduled offline run and served read-only over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Open DuckDB and create the catalog tables
//  3. Run history: Open the Badger run store
//  4. Pipeline: Preparer, clusterer and the enabled recommenders
//  5. Observers: run history, API cache, backend notifier, NATS events (optional)
//  6. Supervisor tree: data, pipeline and API layers
//  7. HTTP Server: Chi router with the /api/v1 surface
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// The feature table can only be changed through the config file.
//
// # Build Tags
//
//	go build ./cmd/server               # Pipeline and HTTP API
//	go build -tags nats ./cmd/server    # Add NATS JetStream run events
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Cancels a running pipeline run at its next checkpoint
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the run store and database
//
// # Example Usage
//
//	export DUCKDB_PATH=/data/showroom.duckdb
//	export API_KEY=$(openssl rand -hex 32)
//	export BACKEND_URL=https://api.example.com
//	export NUM_CLUSTERS=20
//	./showroom
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/showroom/internal/api"
	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/database"
	"github.com/tomtom215/showroom/internal/events"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/notify"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/runstore"
	"github.com/tomtom215/showroom/internal/supervisor"
	"github.com/tomtom215/showroom/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	startedAt := time.Now()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "showroom",
		Version:   version,
		Output:    os.Stderr,
	})

	logging.Info().Msg("Starting Showroom with supervisor tree")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Bool("notifications", cfg.Backend.NotificationsEnabled()).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Configuration loaded")
	logSecurityWarnings(&cfg.Security)

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	db.SetProductStatuses(cfg.Pipeline.Source.Statuses)
	db.SetInteractionWindow(cfg.Pipeline.Source.InteractionWindow)
	logging.Info().
		Strs("statuses", cfg.Pipeline.Source.Statuses).
		Dur("interaction_window", cfg.Pipeline.Source.InteractionWindow).
		Msg("Database initialized successfully")

	runs, err := runstore.Open(&cfg.RunStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open run store")
	}
	defer func() {
		if err := runs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing run store")
		}
	}()

	pipeline, err := initPipeline(&cfg.Pipeline, db, db, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridges zerolog to slog for sutureslog
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	publisher, err := initEvents(ctx, &cfg.NATS, tree, events.Start)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS")
	}

	var notifier recommend.RunObserver
	if cfg.Backend.NotificationsEnabled() {
		notifier = notify.New(&cfg.Backend)
		logging.Info().Str("url", cfg.Backend.URL).Msg("Backend notifier enabled")
	} else {
		logging.Info().Msg("Backend notifications disabled (BACKEND_URL not set)")
	}

	pipelineSvc := services.NewPipelineService(
		pipeline,
		services.PipelineServiceConfigFrom(pipeline.Config().Schedule),
		logging.WithComponent("pipeline-service"),
	)

	handler := api.NewHandler(db, runs, pipeline, pipelineSvc, version)
	router := api.NewRouter(handler, &cfg.Security)

	// Observers run in registration order.
	observers := registerObservers(pipeline, runs, handler, notifier, publisher)
	logging.Info().Int("observers", observers).Msg("Run observers registered")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddDataService(runs)
	tree.AddPipelineService(pipelineSvc)
	tree.AddAPIService(services.NewHTTPServerService(server.Addr, server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	go reportUptime(ctx, startedAt)

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// logSecurityWarnings reports settings that leave the API open.
func logSecurityWarnings(sec *config.SecurityConfig) {
	if sec.APIKey == "" {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("API_KEY is not set: /api/v1 accepts unauthenticated requests")
		logging.Warn().Msg("Set API_KEY before exposing this server")
		logging.Warn().Msg("============================================================")
	}
	for _, origin := range sec.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS_ORIGINS allows any origin (*)")
			break
		}
	}
	if sec.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
	}
}

// reportUptime refreshes the uptime gauge until ctx is canceled.
func reportUptime(ctx context.Context, startedAt time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.AppUptime.Set(time.Since(startedAt).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

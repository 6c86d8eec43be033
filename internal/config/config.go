// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package config

import "time"

// Config holds all application configuration loaded from defaults,
// an optional YAML file and environment variables.
type Config struct {
	Pipeline PipelineConfig `koanf:"pipeline"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Backend  BackendConfig  `koanf:"backend"`  // Optional: status notifications to the showroom backend
	NATS     NATSConfig     `koanf:"nats"`     // Optional: run-completed events
	RunStore RunStoreConfig `koanf:"runstore"` // Run history
	Logging  LoggingConfig  `koanf:"logging"`
}

// PipelineConfig holds the clustering and recommendation pipeline settings.
//
// Environment Variables:
//   - MAX_RECOMMENDATIONS_PER_PRODUCT: List length cap (default: 5)
//   - NUM_CLUSTERS: Requested cluster count for maxclust (default: 10)
//   - LINKAGE_METHOD: ward, complete, average, single (default: ward)
//   - DISTANCE_METRIC: euclidean, manhattan, chebyshev, cosine (default: euclidean)
//   - CLUSTER_CRITERION: maxclust or distance (default: maxclust)
//   - DISTANCE_THRESHOLD: Cut height for the distance criterion (default: 4.5)
//   - LOG_TRANSFORM_FEATURES: Comma-separated numeric features for log1p (default: travelDistance)
//   - INTERACTION_TYPES: Comma-separated interaction types for co-occurrence (default: view)
//   - PRODUCT_STATUSES: Comma-separated product statuses to cluster (default: all)
//   - INTERACTION_WINDOW: Only use interactions newer than this, e.g. 720h (default: all)
//   - PIPELINE_INTERVAL: Time between scheduled runs (default: 1h)
//   - PIPELINE_RUN_ON_STARTUP: Run once when the service starts (default: true)
//   - PIPELINE_RUN_TIMEOUT: Per-run timeout (default: 30m)
//   - STRATEGY_CLUSTER_PROXIMITY / STRATEGY_CO_OCCURRENCE: Toggle strategies (default: true)
//
// The weighted feature table is only configurable from the YAML file:
//
//	pipeline:
//	  features:
//	    - {name: price, kind: numeric, weight: 1.0}
//	    - {name: brand, kind: categorical, weight: 0.9}
type PipelineConfig struct {
	// Features is the weighted feature table.
	Features []FeatureEntry `koanf:"features"`

	// LogTransform names numeric features that receive log1p before scaling.
	LogTransform []string `koanf:"log_transform"`

	// PriceField is the product attribute holding the price.
	PriceField string `koanf:"price_field"`

	// MissingCategory replaces nil or blank categorical values.
	MissingCategory string `koanf:"missing_category"`

	Clustering ClusteringConfig `koanf:"clustering"`

	// MaxRecommendations caps every stored recommendation list.
	MaxRecommendations int `koanf:"max_recommendations"`

	Strategies StrategiesConfig `koanf:"strategies"`

	// InteractionTypes feed the co-occurrence recommender.
	InteractionTypes []string `koanf:"interaction_types"`

	Source SourceConfig `koanf:"source"`

	// Interval is the time between scheduled runs.
	Interval time.Duration `koanf:"interval"`

	// RunOnStartup triggers a run as soon as the service starts.
	RunOnStartup bool `koanf:"run_on_startup"`

	// RunTimeout bounds a single run.
	RunTimeout time.Duration `koanf:"run_timeout"`
}

// FeatureEntry is one row of the weighted feature table.
type FeatureEntry struct {
	Name   string  `koanf:"name"`
	Kind   string  `koanf:"kind"`
	Weight float64 `koanf:"weight"`
}

// ClusteringConfig holds hierarchical clustering parameters.
type ClusteringConfig struct {
	Linkage           string  `koanf:"linkage"`
	Metric            string  `koanf:"metric"`
	Criterion         string  `koanf:"criterion"`
	NumClusters       int     `koanf:"num_clusters"`
	DistanceThreshold float64 `koanf:"distance_threshold"`
}

// StrategiesConfig toggles the recommendation strategies.
type StrategiesConfig struct {
	ClusterProximity bool `koanf:"cluster_proximity"`
	CoOccurrence     bool `koanf:"co_occurrence"`
}

// SourceConfig filters what the DuckDB data source returns.
type SourceConfig struct {
	// Statuses limits clustered products to these statuses. Empty means all.
	Statuses []string `koanf:"statuses"`

	// InteractionWindow drops interactions older than this from co-occurrence
	// input. Zero keeps the full history.
	InteractionWindow time.Duration `koanf:"interaction_window"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/showroom.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 means runtime.NumCPU (default: 0)
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8090)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: production)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds API protection settings.
//
// Environment Variables:
//   - API_KEY: Shared key required in the x-api-key header for mutating endpoints
//   - RATE_LIMIT_REQUESTS: Requests per window (default: 60)
//   - RATE_LIMIT_WINDOW: Window length (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable rate limiting (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
type SecurityConfig struct {
	APIKey            string        `koanf:"api_key"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// BackendConfig holds settings for run status notifications.
// Notifications are sent only when URL is set.
//
// Environment Variables:
//   - BACKEND_URL: Showroom backend base URL
//   - BACKEND_API_KEY: Key sent in x-api-key (default: API_KEY)
//   - BACKEND_TIMEOUT: Request timeout (default: 30s)
//   - BACKEND_SOURCE: Source name reported in the payload (default: vps_clustering_worker)
type BackendConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
	Source  string        `koanf:"source"`
}

// NATSConfig holds NATS JetStream settings for run-completed events.
// Requires a binary built with the nats tag.
//
// Environment Variables:
//   - NATS_ENABLED: Publish run events (default: false)
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Start an embedded server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
//   - NATS_MAX_MEMORY / NATS_MAX_STORE: JetStream limits in bytes
//   - NATS_RETENTION_DAYS: Stream retention (default: 7)
//   - NATS_SUBJECT: Subject for run events (default: showroom.pipeline.completed)
type NATSConfig struct {
	Enabled             bool   `koanf:"enabled"`
	URL                 string `koanf:"url"`
	EmbeddedServer      bool   `koanf:"embedded_server"`
	StoreDir            string `koanf:"store_dir"`
	MaxMemory           int64  `koanf:"max_memory"`
	MaxStore            int64  `koanf:"max_store"`
	StreamRetentionDays int    `koanf:"stream_retention_days"`
	Subject             string `koanf:"subject"`
}

// RunStoreConfig holds run history settings.
//
// Environment Variables:
//   - RUNSTORE_PATH: Badger directory, empty for in-memory (default: /data/runs)
//   - RUNSTORE_RETENTION: How long run reports are kept (default: 720h)
//   - RUNSTORE_HISTORY_LIMIT: Maximum runs returned by the API (default: 100)
type RunStoreConfig struct {
	Path         string        `koanf:"path"`
	Retention    time.Duration `koanf:"retention"`
	HistoryLimit int           `koanf:"history_limit"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

// NotificationsEnabled reports whether run status notifications are configured.
func (b *BackendConfig) NotificationsEnabled() bool {
	return b.URL != ""
}

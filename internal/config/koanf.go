// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/showroom/config.yaml",
	"/etc/showroom/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Pipeline: defaultPipelineConfig(),
		Database: DatabaseConfig{
			Path:                   "/data/showroom.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // runtime.NumCPU
			PreserveInsertionOrder: true,
		},
		Server: ServerConfig{
			Port:        8090,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "production",
		},
		Security: SecurityConfig{
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Backend: BackendConfig{
			Timeout: 30 * time.Second,
			Source:  "vps_clustering_worker",
		},
		NATS: NATSConfig{
			Enabled:             false,
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           256 << 20,
			MaxStore:            1 << 30,
			StreamRetentionDays: 7,
			Subject:             "showroom.pipeline.completed",
		},
		RunStore: RunStoreConfig{
			Path:         "/data/runs",
			Retention:    30 * 24 * time.Hour,
			HistoryLimit: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
// Priority (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyDerivedDefaults fills values that default to other settings.
func (c *Config) applyDerivedDefaults() {
	if c.Backend.APIKey == "" {
		c.Backend.APIKey = c.Security.APIKey
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
}

// findConfigFile returns the first config file found, or empty string if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
// when set from environment variables.
var sliceConfigPaths = []string{
	"pipeline.log_transform",
	"pipeline.interaction_types",
	"pipeline.source.statuses",
	"security.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Pipeline
	"max_recommendations_per_product": "pipeline.max_recommendations",
	"num_clusters":                    "pipeline.clustering.num_clusters",
	"linkage_method":                  "pipeline.clustering.linkage",
	"distance_metric":                 "pipeline.clustering.metric",
	"cluster_criterion":               "pipeline.clustering.criterion",
	"distance_threshold":              "pipeline.clustering.distance_threshold",
	"log_transform_features":          "pipeline.log_transform",
	"price_field":                     "pipeline.price_field",
	"missing_category":                "pipeline.missing_category",
	"interaction_types":               "pipeline.interaction_types",
	"product_statuses":                "pipeline.source.statuses",
	"interaction_window":              "pipeline.source.interaction_window",
	"pipeline_interval":               "pipeline.interval",
	"pipeline_run_on_startup":         "pipeline.run_on_startup",
	"pipeline_run_timeout":            "pipeline.run_timeout",
	"strategy_cluster_proximity":      "pipeline.strategies.cluster_proximity",
	"strategy_co_occurrence":          "pipeline.strategies.co_occurrence",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"api_key":             "security.api_key",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Backend notifications
	"backend_url":     "backend.url",
	"backend_api_key": "backend.api_key",
	"backend_timeout": "backend.timeout",
	"backend_source":  "backend.source",

	// NATS
	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_embedded":       "nats.embedded_server",
	"nats_store_dir":      "nats.store_dir",
	"nats_max_memory":     "nats.max_memory",
	"nats_max_store":      "nats.max_store",
	"nats_retention_days": "nats.stream_retention_days",
	"nats_subject":        "nats.subject",

	// Run history
	"runstore_path":          "runstore.path",
	"runstore_retention":     "runstore.retention",
	"runstore_history_limit": "runstore.history_limit",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package config provides centralized configuration management for Showroom.

Configuration is layered with Koanf:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/showroom/config.yaml, /etc/showroom/config.yml
 3. Environment variables (highest priority)

Environment variables are mapped explicitly (see envMappings); unknown
variables are ignored. Slice settings such as INTERACTION_TYPES and
CORS_ORIGINS accept comma-separated values.

# Configuration Structure

  - PipelineConfig: feature table, clustering, strategies, schedule
  - DatabaseConfig: DuckDB file and tuning
  - ServerConfig: HTTP listener
  - SecurityConfig: API key, rate limiting, CORS
  - BackendConfig: run status notifications
  - NATSConfig: run-completed events (nats build tag)
  - RunStoreConfig: Badger run history
  - LoggingConfig: zerolog level and format

Pipeline variables use the names existing deployments already set:
MAX_RECOMMENDATIONS_PER_PRODUCT, NUM_CLUSTERS, LINKAGE_METHOD,
DISTANCE_METRIC and CLUSTER_CRITERION.

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	pipelineCfg := cfg.Pipeline.RecommendConfig()

# Validation

Validate rejects template placeholders such as "<your-api-key>", out of
range limits, and any pipeline setting recommend.Config.Validate rejects.
*/
package config

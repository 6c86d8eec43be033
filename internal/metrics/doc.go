// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8090/metrics

# Available Metrics

Pipeline Metrics:
  - pipeline_runs_total: Completed runs (counter)
    Labels: trigger (startup, schedule, manual), status (success, failed, skipped)
  - pipeline_run_duration_seconds: Run wall time (histogram)
  - pipeline_running: 1 while a run holds the pipeline lock (gauge)
  - pipeline_last_success_timestamp: Unix time of the last successful run (gauge)
  - pipeline_products, pipeline_clusters: Size of the latest run (gauge)
  - pipeline_cluster_writes_total: Cluster upsert outcomes (counter)
    Labels: result (matched, modified, skipped)
  - pipeline_recommendation_sets_total: Set outcomes (counter)
    Labels: strategy (clustering-based, co-occurrence), result (written, skipped, deleted)
  - pipeline_triggers_coalesced_total: Manual triggers merged into a pending run
  - pipeline_observer_errors_total: Failed observer notifications
    Labels: observer

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures, circuit_breaker_state_transitions_total

NATS Metrics:
  - nats_messages_published_total, nats_publish_errors_total

# Usage

	start := time.Now()
	res, err := db.ReplaceRecommendations(ctx, strategy, sets)
	metrics.RecordDBQuery("replace", "product_recommendations", time.Since(start), err)

	metrics.RecordPipelineRun(report)

# Testing

Use prometheus/testutil to read collector values:

	before := testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues("manual", "success"))
*/
package metrics

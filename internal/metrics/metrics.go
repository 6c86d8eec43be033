// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/showroom/internal/recommend"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Pipeline Metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"trigger", "status"},
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_running",
			Help: "1 while a pipeline run is in progress",
		},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	PipelineProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_products",
			Help: "Products loaded by the latest run",
		},
	)

	PipelineClusters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_clusters",
			Help: "Distinct clusters produced by the latest run",
		},
	)

	PipelineClusterWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cluster_writes_total",
			Help: "Cluster assignment outcomes",
		},
		[]string{"result"}, // matched, modified, skipped
	)

	PipelineRecommendationSets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_recommendation_sets_total",
			Help: "Recommendation set outcomes per strategy",
		},
		[]string{"strategy", "result"}, // written, skipped, deleted
	)

	PipelineTriggersCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_triggers_coalesced_total",
			Help: "Manual triggers merged into an already pending run",
		},
	)

	ObserverErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_observer_errors_total",
			Help: "Run observer failures",
		},
		[]string{"observer"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of run events published to NATS",
		},
	)

	NATSPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Total number of failed NATS publishes",
		},
	)

	// Recommendation Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_cache_entries",
			Help: "Current number of cached recommendation responses",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordPipelineRun records the outcome of a completed run.
func RecordPipelineRun(report *recommend.RunReport) {
	if report == nil {
		return
	}

	PipelineRunsTotal.WithLabelValues(string(report.Trigger), string(report.Status)).Inc()
	PipelineRunDuration.Observe(report.Duration().Seconds())
	PipelineProducts.Set(float64(report.Products))
	PipelineClusters.Set(float64(report.Clusters))

	if report.Status != recommend.RunFailed {
		PipelineLastSuccess.Set(float64(report.FinishedAt.Unix()))
	}

	if cw := report.ClusterWrite; cw != nil {
		PipelineClusterWrites.WithLabelValues("matched").Add(float64(cw.Matched))
		PipelineClusterWrites.WithLabelValues("modified").Add(float64(cw.Modified))
		PipelineClusterWrites.WithLabelValues("skipped").Add(float64(cw.Skipped))
	}

	for strategy, sr := range report.Strategies {
		PipelineRecommendationSets.WithLabelValues(string(strategy), "written").Add(float64(sr.Written))
		PipelineRecommendationSets.WithLabelValues(string(strategy), "skipped").Add(float64(sr.Skipped))
		PipelineRecommendationSets.WithLabelValues(string(strategy), "deleted").Add(float64(sr.Deleted))
	}
}

// SetPipelineRunning flips the running gauge
func SetPipelineRunning(running bool) {
	if running {
		PipelineRunning.Set(1)
	} else {
		PipelineRunning.Set(0)
	}
}

// RecordTriggerCoalesced records a manual trigger merged into a pending one
func RecordTriggerCoalesced() {
	PipelineTriggersCoalesced.Inc()
}

// RecordObserverError records a failed run observer notification
func RecordObserverError(observer string) {
	ObserverErrors.WithLabelValues(observer).Inc()
}

// RecordNATSPublish records a run event publish attempt
func RecordNATSPublish(err error) {
	if err != nil {
		NATSPublishErrors.Inc()
		return
	}
	NATSMessagesPublished.Inc()
}

// RecordCacheLookup records a recommendation cache lookup and its size
func RecordCacheLookup(hit bool, entries int) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
	CacheEntries.Set(float64(entries))
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package api provides the HTTP interface of the Showroom pipeline service.

Routes (chi):

	GET  /health                              liveness and dependency status
	GET  /metrics                             Prometheus exposition
	POST /api/v1/pipeline/run                 queue a manual run (202)
	GET  /api/v1/pipeline/status              pipeline state, table stats, latest run
	GET  /api/v1/pipeline/runs?limit=         run history, newest first
	GET  /api/v1/pipeline/runs/{runID}        one run report
	GET  /api/v1/products/{productID}         stored product with its cluster
	GET  /api/v1/recommendations/{productID}  stored sets, optionally ?type=
	POST /api/v1/products                     upsert products
	POST /api/v1/interactions                 append interactions

Every /api/v1 route is rate limited per client IP and requires the
x-api-key header when security.api_key is configured.

# Response Format

All endpoints except /metrics answer with models.APIResponse:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "request_id": "..."}
	}

Errors set status "error" and an error object with a code such as
VALIDATION_ERROR, NOT_FOUND, DATABASE_ERROR or SERVICE_UNAVAILABLE.

# Dependencies

Handler depends on small interfaces (Store, RunHistory, PipelineView,
RunTrigger) so tests can substitute hand-written fakes. In production
they are satisfied by *database.DB, *runstore.Store, *recommend.Pipeline
and the supervisor's pipeline service.
*/
package api

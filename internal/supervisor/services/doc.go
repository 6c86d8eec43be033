// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package services provides suture.Service wrappers for Showroom components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

Pipeline (PipelineService):
  - Runs the clustering and recommendation pipeline on startup and on a ticker
  - Accepts manual triggers; triggers arriving while one is pending coalesce
  - Bounds every run with a timeout and records run metrics

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve

Observer metrics (WithObserverMetrics):
  - Wraps a recommend.RunObserver and counts its failures

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

A failed pipeline run is not a service failure: it is logged and recorded,
and the next tick runs again.
*/
package services

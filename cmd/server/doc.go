// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package main is the entry point for the Showroom server application.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("showroom")
	├── DataSupervisor ("data-layer")
	│   └── Run store garbage collection
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── Pipeline scheduler (startup, interval and manual runs)
	│   └── NATS components (optional, -tags nats)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Every completed run is handed to the registered observers in order: the
Badger run store, the API recommendation cache, the backend notifier (when
BACKEND_URL is set) and the JetStream publisher (when NATS_ENABLED=true and
built with -tags nats).
Observer failures are logged and counted but never fail the run.

# Configuration

Core environment variables:

	# Pipeline
	MAX_RECOMMENDATIONS_PER_PRODUCT=5
	NUM_CLUSTERS=10
	LINKAGE_METHOD=ward          # ward, complete, average, single
	DISTANCE_METRIC=euclidean    # euclidean, manhattan, chebyshev, cosine
	CLUSTER_CRITERION=maxclust   # maxclust or distance
	INTERACTION_TYPES=view
	INTERACTION_WINDOW=720h      # empty keeps the full history
	PIPELINE_INTERVAL=1h

	# Storage
	DUCKDB_PATH=/data/showroom.duckdb
	RUNSTORE_PATH=/data/runs

	# HTTP
	HTTP_PORT=8090
	API_KEY=...                  # required header x-api-key on /api/v1

	# Notifications
	BACKEND_URL=https://api.example.com
	BACKEND_API_KEY=...          # defaults to API_KEY

	# Events (-tags nats)
	NATS_ENABLED=true
	NATS_EMBEDDED=true

See internal/config for the full list.
*/
package main

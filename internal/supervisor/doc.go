// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package supervisor provides process supervision for Showroom using suture v4.

Long-running services are organized into three layers for failure isolation:

	RootSupervisor ("showroom")
	├── DataSupervisor ("data-layer")
	│   └── runstore-gc
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── pipeline-service
	│   └── nats-events (if NATS_ENABLED, build tag: nats)
	└── APISupervisor ("api-layer")
	    └── http-server

A failing pipeline layer does not take the API down; stored recommendations
stay readable while the scheduler restarts with backoff.

Supervisor events (start, stop, failure, backoff) are logged through slog
via sutureslog. main.go bridges slog to zerolog with logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(runStore)
	tree.AddPipelineService(services.NewPipelineService(pipeline, schedCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server.Addr, server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

See the services subpackage for the individual wrappers.
*/
package supervisor

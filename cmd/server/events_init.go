// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package main

import (
	"context"
	"errors"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/events"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/supervisor"
)

// eventStarter matches events.Start.
type eventStarter func(ctx context.Context, cfg *config.NATSConfig) (*events.Components, error)

// initEvents starts run-completed event publishing when NATS is enabled and
// adds the components to the pipeline layer. It returns the publisher
// observer, or nil when publishing is off.
//
// A binary built without the nats tag logs a warning and keeps running.
func initEvents(ctx context.Context, cfg *config.NATSConfig, tree *supervisor.SupervisorTree, start eventStarter) (recommend.RunObserver, error) {
	if !cfg.Enabled {
		logging.Info().Msg("NATS event publishing disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	components, err := start(ctx, cfg)
	if errors.Is(err, events.ErrNATSNotEnabled) {
		logging.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if tree != nil {
		tree.AddPipelineService(components)
		logging.Info().Msg("NATS components added to supervisor tree")
	}
	return components.Publisher(), nil
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

//go:build !nats

package events

import (
	"context"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/recommend"
)

// Components is a stub for non-NATS builds.
type Components struct{}

// Start returns ErrNATSNotEnabled in non-NATS builds.
func Start(_ context.Context, _ *config.NATSConfig) (*Components, error) {
	return nil, ErrNATSNotEnabled
}

// Publisher returns nil for non-NATS builds.
func (c *Components) Publisher() recommend.RunObserver {
	return nil
}

// Serve blocks until ctx is canceled.
func (c *Components) Serve(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// String returns the service name for supervisor logging.
func (c *Components) String() string {
	return "nats-events"
}

// IsRunning returns false for non-NATS builds.
func (c *Components) IsRunning() bool {
	return false
}

// Shutdown is a no-op stub.
func (c *Components) Shutdown(_ context.Context) {}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

//go:build nats

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/recommend"
)

// shutdownTimeout bounds how long Shutdown waits for the embedded server.
const shutdownTimeout = 10 * time.Second

// Components holds the NATS resources used for event publication.
type Components struct {
	server    *EmbeddedServer
	conn      *natsgo.Conn
	publisher *Publisher

	mu      sync.Mutex
	running bool
}

// Start brings up the embedded server (when configured), ensures the stream
// exists and creates the publisher.
func Start(ctx context.Context, cfg *config.NATSConfig) (*Components, error) {
	logging.Info().Msg("Initializing NATS event publishing...")

	c := &Components{}
	natsURL := cfg.URL

	if cfg.EmbeddedServer {
		serverCfg, err := ServerConfigFromURL(cfg.URL, cfg.StoreDir, cfg.MaxMemory, cfg.MaxStore)
		if err != nil {
			return nil, err
		}
		srv, err := NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, err
		}
		c.server = srv
		natsURL = srv.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		c.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	c.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		c.Shutdown(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := EnsureStream(ctx, js, DefaultStreamConfig(cfg.Subject, cfg.StreamRetentionDays))
	if err != nil {
		c.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	info := stream.CachedInfo()
	logging.Info().
		Str("name", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Dur("max_age", info.Config.MaxAge).
		Msg("JetStream stream ready")

	pub, err := NewPublisher(DefaultPublisherConfig(natsURL, cfg.Subject), nil)
	if err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}
	c.publisher = pub

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	logging.Info().Str("subject", cfg.Subject).Msg("NATS event publisher ready")
	return c, nil
}

// Publisher returns the run observer publishing pipeline events.
func (c *Components) Publisher() recommend.RunObserver {
	return c.publisher
}

// Serve implements suture.Service. It holds the components open until ctx
// is canceled, then shuts them down.
func (c *Components) Serve(ctx context.Context) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.Shutdown(shutdownCtx)
	return ctx.Err()
}

// String returns the service name for supervisor logging.
func (c *Components) String() string {
	return "nats-events"
}

// IsRunning reports whether the components are started and connected.
func (c *Components) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.conn != nil && c.conn.IsConnected()
}

// Shutdown closes the publisher, connection and embedded server in that order.
// Safe to call more than once.
func (c *Components) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close NATS publisher")
		}
		c.publisher = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
		}
		c.server = nil
	}
	c.running = false
}

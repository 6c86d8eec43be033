// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package testinfra provides container helpers for integration tests.
//
// It uses testcontainers-go to run a real NATS server with JetStream, so
// the event publisher is tested against the broker it talks to in
// production rather than a mock:
//
//	func TestPublish(t *testing.T) {
//	    ctx := context.Background()
//	    natsC := testinfra.StartNATS(t, ctx)
//
//	    c, err := events.Start(ctx, &config.NATSConfig{URL: natsC.URL, ...})
//	}
//
// Every file carries the integration build tag; run with
//
//	go test -tags "integration nats" ./...
//
// Tests skip under -short or when Docker is unavailable.
package testinfra

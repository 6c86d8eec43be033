// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

//go:build integration && nats

package events

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/testinfra"
)

// TestPublishToExternalBroker_Integration publishes against a containerized
// NATS server, restarting the publisher between runs.
func TestPublishToExternalBroker_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	natsC := testinfra.StartNATS(t, ctx)

	cfg := &config.NATSConfig{
		Enabled:             true,
		URL:                 natsC.URL,
		EmbeddedServer:      false,
		StreamRetentionDays: 1,
		Subject:             testSubject,
	}

	first := testReport()
	first.RunID = "5d7b2c1e-0000-4000-8000-000000000001"
	second := testReport()
	second.RunID = "5d7b2c1e-0000-4000-8000-000000000002"
	second.Status = recommend.RunFailed
	second.Error = "load products: connection refused"

	publishAll := func(reports ...*recommend.RunReport) {
		t.Helper()
		c, err := Start(ctx, cfg)
		if err != nil {
			t.Fatalf("Start() error = %v\n%s", err, testinfra.ContainerLogs(ctx, natsC.Container))
		}
		defer c.Shutdown(ctx)
		for _, r := range reports {
			if err := c.Publisher().OnRunComplete(ctx, r); err != nil {
				t.Fatalf("OnRunComplete(%s) error = %v", r.RunID, err)
			}
		}
	}

	publishAll(first)
	// A restarted publisher resends the first run; the broker drops it.
	publishAll(first, second)

	nc, err := natsgo.Connect(natsC.URL)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream.New() error = %v", err)
	}
	stream, err := js.Stream(ctx, StreamName)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.State.Msgs != 2 {
		t.Errorf("stream messages = %d, want 2", info.State.Msgs)
	}

	raw, err := stream.GetLastMsgForSubject(ctx, testSubject)
	if err != nil {
		t.Fatalf("GetLastMsgForSubject() error = %v", err)
	}
	ev, err := DeserializeEvent(raw.Data)
	if err != nil {
		t.Fatalf("DeserializeEvent() error = %v", err)
	}
	if ev.RunID != second.RunID || ev.Status != string(recommend.RunFailed) || ev.Error != second.Error {
		t.Errorf("last event = %+v, want failed run %s", ev, second.RunID)
	}
}

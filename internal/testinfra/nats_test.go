// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

//go:build integration

package testinfra

import (
	"context"
	"net/http"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func TestNATSContainer_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	natsC := StartNATS(t, ctx)

	resp, err := http.Get(natsC.MonitorURL + "/healthz")
	if err != nil {
		t.Fatalf("monitor endpoint unreachable: %v\n%s", err, ContainerLogs(ctx, natsC.Container))
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}

	nc, err := natsgo.Connect(natsC.URL)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream.New() error = %v", err)
	}
	if _, err := js.AccountInfo(ctx); err != nil {
		t.Errorf("JetStream should be enabled: %v", err)
	}
}

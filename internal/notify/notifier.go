// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package notify reports pipeline run outcomes to the showroom backend.
//
// The backend exposes POST {BACKEND_URL}/api/logs/clustering, authenticated
// with the x-api-key header, and expects:
//
//	{
//	  "source": "vps_clustering_worker",
//	  "status": "sukses",
//	  "message": "Pipeline run finished in 12.34 seconds.",
//	  "timestamp": "2026-03-01 12:00:00",
//	  "details": {...}
//	}
//
// Status values "sukses" and "gagal" are part of the backend contract.
// Timestamps are UTC in "2006-01-02 15:04:05" layout.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/resilience"
)

// Backend status values
const (
	StatusSuccess = "sukses"
	StatusFailure = "gagal"
)

// TimestampLayout is the backend's timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// logPath is the backend endpoint receiving run logs.
const logPath = "/api/logs/clustering"

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 1024

// Payload is the JSON body sent to the backend.
type Payload struct {
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details"`
}

var _ recommend.RunObserver = (*Notifier)(nil)

// Notifier posts run reports to the backend log endpoint.
type Notifier struct {
	endpoint string
	apiKey   string
	source   string
	client   *http.Client
	cb       *resilience.Breaker
	now      func() time.Time
}

// New creates a notifier from backend settings.
func New(cfg *config.BackendConfig) *Notifier {
	return &Notifier{
		endpoint: cfg.URL + logPath,
		apiKey:   cfg.APIKey,
		source:   cfg.Source,
		client:   &http.Client{Timeout: cfg.Timeout},
		cb:       resilience.NewBreaker("backend-notifier", resilience.DefaultBreakerConfig()),
		now:      time.Now,
	}
}

// Name implements recommend.RunObserver.
func (n *Notifier) Name() string {
	return "backend-notifier"
}

// OnRunComplete implements recommend.RunObserver.
func (n *Notifier) OnRunComplete(ctx context.Context, report *recommend.RunReport) error {
	return n.Send(ctx, n.BuildPayload(report))
}

// BuildPayload converts a run report into the backend payload.
func (n *Notifier) BuildPayload(report *recommend.RunReport) *Payload {
	p := &Payload{
		Source:    n.source,
		Status:    StatusSuccess,
		Message:   report.Summary(),
		Timestamp: n.now().UTC().Format(TimestampLayout),
		Details: map[string]any{
			"run_id":           report.RunID,
			"trigger":          string(report.Trigger),
			"duration_seconds": report.Duration().Seconds(),
		},
	}

	if report.Status == recommend.RunFailed {
		p.Status = StatusFailure
		return p
	}

	p.Details["run_status"] = string(report.Status)
	p.Details["products"] = report.Products
	p.Details["interactions"] = report.Interactions
	p.Details["clusters"] = report.Clusters
	if report.ClusterWrite != nil {
		p.Details["matched_count"] = report.ClusterWrite.Matched
		p.Details["modified_count"] = report.ClusterWrite.Modified
	}
	for strategy, sr := range report.Strategies {
		p.Details[string(strategy)] = sr
	}
	if len(report.Diagnostics) > 0 {
		p.Details["diagnostics"] = report.Diagnostics
	}
	return p
}

// Send delivers a payload through the circuit breaker.
func (n *Notifier) Send(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = n.cb.Execute(func() error {
		return n.post(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("notify backend: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("status", payload.Status).Msg("Run notification delivered")
	return nil
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", logPath, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

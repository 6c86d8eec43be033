// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/recommend"
)

// StreamName is the JetStream stream holding pipeline events.
const StreamName = "SHOWROOM_PIPELINE"

// EventTypeRunCompleted identifies run completion events.
const EventTypeRunCompleted = "pipeline.run.completed"

// ErrNATSNotEnabled is returned when NATS features are used without the nats build tag.
var ErrNATSNotEnabled = errors.New("NATS event publishing not enabled (build with -tags nats)")

// RunCompletedEvent is the message body published after every run.
type RunCompletedEvent struct {
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`

	Products     int `json:"products"`
	Interactions int `json:"interactions"`
	Clusters     int `json:"clusters"`

	ClustersMatched  int64 `json:"clusters_matched"`
	ClustersModified int64 `json:"clusters_modified"`

	Strategies map[string]recommend.StrategyReport `json:"strategies,omitempty"`
}

// NewRunCompletedEvent builds the event for a finished run.
func NewRunCompletedEvent(report *recommend.RunReport) *RunCompletedEvent {
	ev := &RunCompletedEvent{
		EventType:    EventTypeRunCompleted,
		RunID:        report.RunID,
		Trigger:      string(report.Trigger),
		Status:       string(report.Status),
		Error:        report.Error,
		StartedAt:    report.StartedAt.UTC(),
		FinishedAt:   report.FinishedAt.UTC(),
		DurationMS:   report.Duration().Milliseconds(),
		Products:     report.Products,
		Interactions: report.Interactions,
		Clusters:     report.Clusters,
	}
	if report.ClusterWrite != nil {
		ev.ClustersMatched = report.ClusterWrite.Matched
		ev.ClustersModified = report.ClusterWrite.Modified
	}
	if len(report.Strategies) > 0 {
		ev.Strategies = make(map[string]recommend.StrategyReport, len(report.Strategies))
		for strategy, sr := range report.Strategies {
			ev.Strategies[string(strategy)] = sr
		}
	}
	return ev
}

// Validate checks the fields subscribers rely on.
func (e *RunCompletedEvent) Validate() error {
	if e.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if e.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// SerializeEvent encodes an event as JSON.
func SerializeEvent(e *RunCompletedEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return json.Marshal(e)
}

// DeserializeEvent decodes a JSON event.
func DeserializeEvent(data []byte) (*RunCompletedEvent, error) {
	var e RunCompletedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

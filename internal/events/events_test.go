// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package events

import (
	"testing"
	"time"

	"github.com/tomtom215/showroom/internal/recommend"
)

func testReport() *recommend.RunReport {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &recommend.RunReport{
		RunID:        "run-42",
		Trigger:      recommend.TriggerManual,
		StartedAt:    start,
		FinishedAt:   start.Add(2 * time.Second),
		Status:       recommend.RunSuccess,
		Products:     10,
		Interactions: 25,
		Clusters:     3,
		ClusterWrite: &recommend.ClusterWriteResult{Matched: 10, Modified: 4},
		Strategies: map[recommend.StrategyType]recommend.StrategyReport{
			recommend.StrategyCoOccurrence: {Sources: 5, Written: 5, Deleted: 2},
		},
	}
}

func TestNewRunCompletedEvent(t *testing.T) {
	ev := NewRunCompletedEvent(testReport())

	if ev.EventType != EventTypeRunCompleted {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.RunID != "run-42" || ev.Trigger != "manual" || ev.Status != "success" {
		t.Errorf("identity fields = %q/%q/%q", ev.RunID, ev.Trigger, ev.Status)
	}
	if ev.DurationMS != 2000 {
		t.Errorf("DurationMS = %d, want 2000", ev.DurationMS)
	}
	if ev.ClustersMatched != 10 || ev.ClustersModified != 4 {
		t.Errorf("cluster counts = %d/%d, want 10/4", ev.ClustersMatched, ev.ClustersModified)
	}
	sr, ok := ev.Strategies["co-occurrence"]
	if !ok || sr.Written != 5 || sr.Deleted != 2 {
		t.Errorf("Strategies = %+v", ev.Strategies)
	}
}

func TestNewRunCompletedEventFailedRun(t *testing.T) {
	report := &recommend.RunReport{
		RunID:     "run-7",
		Trigger:   recommend.TriggerSchedule,
		StartedAt: time.Now(),
		Status:    recommend.RunFailed,
		Error:     "load products: timeout",
	}

	ev := NewRunCompletedEvent(report)
	if ev.Error != "load products: timeout" {
		t.Errorf("Error = %q", ev.Error)
	}
	if ev.Strategies != nil {
		t.Errorf("Strategies = %v, want nil", ev.Strategies)
	}
	if ev.ClustersMatched != 0 {
		t.Errorf("ClustersMatched = %d, want 0", ev.ClustersMatched)
	}
	if ev.DurationMS != 0 {
		t.Errorf("DurationMS = %d, want 0 for unfinished run", ev.DurationMS)
	}
}

func TestSerializeEvent(t *testing.T) {
	ev := NewRunCompletedEvent(testReport())

	data, err := SerializeEvent(ev)
	if err != nil {
		t.Fatalf("SerializeEvent() error = %v", err)
	}

	got, err := DeserializeEvent(data)
	if err != nil {
		t.Fatalf("DeserializeEvent() error = %v", err)
	}
	if got.RunID != ev.RunID || got.Products != ev.Products {
		t.Errorf("decoded = %+v", got)
	}
	if !got.StartedAt.Equal(ev.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, ev.StartedAt)
	}
}

func TestSerializeEventValidation(t *testing.T) {
	tests := []struct {
		name  string
		event RunCompletedEvent
	}{
		{"missing run id", RunCompletedEvent{Status: "success"}},
		{"missing status", RunCompletedEvent{RunID: "run-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SerializeEvent(&tt.event); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDeserializeEventInvalid(t *testing.T) {
	if _, err := DeserializeEvent([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

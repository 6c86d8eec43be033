// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"fmt"
	"time"
)

// Trigger records what started a run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// RunStatus is the outcome of a run.
type RunStatus string

const (
	// RunSuccess means every enabled stage completed.
	RunSuccess RunStatus = "success"
	// RunFailed means a stage failed; later stages did not run.
	RunFailed RunStatus = "failed"
	// RunSkipped means there were no products and no interactions to process.
	RunSkipped RunStatus = "skipped"
)

// StrategyReport summarizes one strategy's output within a run.
type StrategyReport struct {
	// Sources is the number of source products with a non-empty list.
	Sources int `json:"sources"`

	// Written is the number of sets inserted by the sink.
	Written int64 `json:"written"`

	// Skipped is the number of sets rejected by the sink.
	Skipped int `json:"skipped"`

	// Deleted is the number of stale sets removed before insertion.
	Deleted int64 `json:"deleted"`
}

// RunReport describes a single pipeline run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Trigger    Trigger   `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`

	// Products is the number of products loaded from the source.
	Products int `json:"products"`

	// Interactions is the number of interactions loaded from the source.
	Interactions int `json:"interactions"`

	// FeatureColumns is the width of the prepared feature matrix.
	FeatureColumns int `json:"feature_columns"`

	// Clusters is the number of distinct cluster labels produced.
	Clusters int `json:"clusters"`

	// ClusterWrite is set once cluster assignments were persisted.
	ClusterWrite *ClusterWriteResult `json:"cluster_write,omitempty"`

	// Strategies holds per-strategy outcomes for strategies that wrote.
	Strategies map[StrategyType]StrategyReport `json:"strategies"`

	// Diagnostics lists non-fatal notes collected during the run.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a one-line human readable description of the run outcome.
func (r *RunReport) Summary() string {
	switch r.Status {
	case RunFailed:
		return r.Error
	case RunSkipped:
		return fmt.Sprintf("Pipeline run skipped after %.2f seconds: no products or interactions.", r.Duration().Seconds())
	default:
		return fmt.Sprintf("Pipeline run finished in %.2f seconds.", r.Duration().Seconds())
	}
}

func (r *RunReport) addDiagnostic(msg string) {
	r.Diagnostics = append(r.Diagnostics, msg)
}

// PipelineStatus is a point-in-time view of the pipeline.
type PipelineStatus struct {
	// Running is true while a run holds the pipeline lock.
	Running bool `json:"running"`

	// CurrentRunID identifies the in-flight run.
	CurrentRunID string `json:"current_run_id,omitempty"`

	// RunCount is the number of completed runs since startup.
	RunCount int64 `json:"run_count"`

	// FailureCount is the number of failed runs since startup.
	FailureCount int64 `json:"failure_count"`

	// LastSuccessAt is the finish time of the latest successful run.
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`

	// LastRun is the report of the latest completed run.
	LastRun *RunReport `json:"last_run,omitempty"`
}

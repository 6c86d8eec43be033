// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
)

// fakeRunner records triggers and optionally blocks each run until released.
type fakeRunner struct {
	mu       sync.Mutex
	triggers []recommend.Trigger
	err      error
	started  chan recommend.Trigger
	release  chan struct{}
	deadline bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan recommend.Trigger, 16)}
}

func (f *fakeRunner) Run(ctx context.Context, trigger recommend.Trigger) (*recommend.RunReport, error) {
	f.mu.Lock()
	f.triggers = append(f.triggers, trigger)
	_, hasDeadline := ctx.Deadline()
	f.deadline = hasDeadline
	err := f.err
	release := f.release
	f.mu.Unlock()

	f.started <- trigger
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}

	now := time.Now()
	report := &recommend.RunReport{
		RunID:      "run",
		Trigger:    trigger,
		StartedAt:  now,
		FinishedAt: now,
		Status:     recommend.RunSuccess,
	}
	if err != nil {
		report.Status = recommend.RunFailed
		report.Error = err.Error()
	}
	return report, err
}

func (f *fakeRunner) recorded() []recommend.Trigger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recommend.Trigger(nil), f.triggers...)
}

func waitTrigger(t *testing.T, r *fakeRunner, want recommend.Trigger) {
	t.Helper()
	select {
	case got := <-r.started:
		if got != want {
			t.Fatalf("trigger = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run with trigger %q did not start", want)
	}
}

func TestPipelineService_Interface(t *testing.T) {
	var _ suture.Service = (*PipelineService)(nil)
	var _ PipelineRunner = (*recommend.Pipeline)(nil)
}

func TestNewPipelineService_Defaults(t *testing.T) {
	svc := NewPipelineService(newFakeRunner(), PipelineServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != time.Hour {
		t.Errorf("Interval = %v, want 1h", svc.config.Interval)
	}
	if svc.config.RunTimeout != 30*time.Minute {
		t.Errorf("RunTimeout = %v, want 30m", svc.config.RunTimeout)
	}
	if svc.String() != "pipeline-service" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestPipelineServiceConfigFrom(t *testing.T) {
	cfg := PipelineServiceConfigFrom(recommend.ScheduleConfig{
		Interval:     15 * time.Minute,
		RunOnStartup: true,
		Timeout:      5 * time.Minute,
	})
	if !cfg.RunOnStartup || cfg.Interval != 15*time.Minute || cfg.RunTimeout != 5*time.Minute {
		t.Errorf("config = %+v", cfg)
	}
}

func TestPipelineService_RunsOnStartupAndSchedule(t *testing.T) {
	runner := newFakeRunner()
	svc := NewPipelineService(runner, PipelineServiceConfig{
		RunOnStartup: true,
		Interval:     30 * time.Millisecond,
		RunTimeout:   time.Second,
	}, zerolog.Nop())

	before := testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues("startup", "success"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitTrigger(t, runner, recommend.TriggerStartup)
	waitTrigger(t, runner, recommend.TriggerSchedule)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}

	runner.mu.Lock()
	hadDeadline := runner.deadline
	runner.mu.Unlock()
	if !hadDeadline {
		t.Error("runs should carry a timeout")
	}

	after := testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues("startup", "success"))
	if after-before != 1 {
		t.Errorf("startup runs recorded = %v, want 1", after-before)
	}
}

func TestPipelineService_NoStartupRun(t *testing.T) {
	runner := newFakeRunner()
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := runner.recorded(); len(got) != 0 {
		t.Errorf("runs = %v, want none", got)
	}
}

func TestPipelineService_ManualTrigger(t *testing.T) {
	runner := newFakeRunner()
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	if !svc.Trigger() {
		t.Fatal("first Trigger() should be accepted")
	}
	waitTrigger(t, runner, recommend.TriggerManual)
}

func TestPipelineService_TriggersCoalesce(t *testing.T) {
	runner := newFakeRunner()
	runner.release = make(chan struct{})
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	before := testutil.ToFloat64(metrics.PipelineTriggersCoalesced)

	// First trigger starts a run that blocks.
	svc.Trigger()
	waitTrigger(t, runner, recommend.TriggerManual)

	// Second is pending, third coalesces into it.
	if !svc.Trigger() {
		t.Error("second Trigger() should be queued")
	}
	if svc.Trigger() {
		t.Error("third Trigger() should coalesce")
	}
	if got := testutil.ToFloat64(metrics.PipelineTriggersCoalesced) - before; got != 1 {
		t.Errorf("coalesced = %v, want 1", got)
	}

	close(runner.release)
	waitTrigger(t, runner, recommend.TriggerManual)

	select {
	case tr := <-runner.started:
		t.Errorf("unexpected extra run %q", tr)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPipelineService_FailedRunKeepsServing(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("database locked")
	svc := NewPipelineService(runner, PipelineServiceConfig{
		RunOnStartup: true,
		Interval:     20 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitTrigger(t, runner, recommend.TriggerStartup)
	waitTrigger(t, runner, recommend.TriggerSchedule)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestPipelineService_FailedRunLogsRunID(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("database locked")

	var buf bytes.Buffer
	svc := NewPipelineService(runner, PipelineServiceConfig{}, logging.NewTestLogger(&buf))
	svc.run(context.Background(), recommend.TriggerManual)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"run_id":"run"`, `"trigger":"manual"`, "database locked"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

// busyRunner always reports a run in progress.
type busyRunner struct{ calls int }

func (b *busyRunner) Run(context.Context, recommend.Trigger) (*recommend.RunReport, error) {
	b.calls++
	return nil, recommend.ErrRunInProgress
}

func TestPipelineService_RunInProgress(t *testing.T) {
	runner := &busyRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{}, zerolog.Nop())

	before := testutil.ToFloat64(metrics.PipelineTriggersCoalesced)
	svc.run(context.Background(), recommend.TriggerManual)

	if runner.calls != 1 {
		t.Errorf("calls = %d, want 1", runner.calls)
	}
	if got := testutil.ToFloat64(metrics.PipelineTriggersCoalesced) - before; got != 1 {
		t.Errorf("coalesced = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.PipelineRunning); got != 0 {
		t.Errorf("running gauge = %v, want 0", got)
	}
}

func TestPipelineService_CanceledContextSkipsRun(t *testing.T) {
	runner := &busyRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.run(ctx, recommend.TriggerSchedule)

	if runner.calls != 0 {
		t.Errorf("calls = %d, want 0", runner.calls)
	}
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
)

// PipelineRunner executes a single pipeline run.
// Satisfied by *recommend.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, trigger recommend.Trigger) (*recommend.RunReport, error)
}

// PipelineServiceConfig holds scheduling settings for the pipeline service.
type PipelineServiceConfig struct {
	// RunOnStartup triggers a run as soon as the service starts.
	RunOnStartup bool

	// Interval is the time between scheduled runs. Default: 1h.
	Interval time.Duration

	// RunTimeout bounds a single run. Default: 30m.
	RunTimeout time.Duration
}

// PipelineServiceConfigFrom builds service settings from the pipeline schedule.
func PipelineServiceConfigFrom(s recommend.ScheduleConfig) PipelineServiceConfig {
	return PipelineServiceConfig{
		RunOnStartup: s.RunOnStartup,
		Interval:     s.Interval,
		RunTimeout:   s.Timeout,
	}
}

// PipelineService runs the pipeline on a schedule and on demand.
//
// Runs never overlap. A manual trigger while one is already pending is
// coalesced into the pending one.
type PipelineService struct {
	runner   PipelineRunner
	config   PipelineServiceConfig
	logger   zerolog.Logger
	name     string
	triggers chan struct{}
}

// NewPipelineService creates a new pipeline service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineService(runner PipelineRunner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &PipelineService{
		runner:   runner,
		config:   cfg,
		logger:   logger.With().Str("service", "pipeline").Logger(),
		name:     "pipeline-service",
		triggers: make(chan struct{}, 1),
	}
}

// Trigger requests a manual run. It returns false when a manual run is
// already pending; the request is then served by that run.
func (s *PipelineService) Trigger() bool {
	select {
	case s.triggers <- struct{}{}:
		return true
	default:
		metrics.RecordTriggerCoalesced()
		return false
	}
}

// Serve implements the suture.Service interface.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Dur("run_timeout", s.config.RunTimeout).
		Msg("pipeline service starting")

	if s.config.RunOnStartup {
		s.run(ctx, recommend.TriggerStartup)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.run(ctx, recommend.TriggerSchedule)

		case <-s.triggers:
			s.run(ctx, recommend.TriggerManual)
		}
	}
}

// run executes one bounded run. Failures are recorded, never returned:
// the next tick retries.
func (s *PipelineService) run(ctx context.Context, trigger recommend.Trigger) {
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(logging.ContextWithLogger(ctx, s.logger), s.config.RunTimeout)
	defer cancel()

	metrics.SetPipelineRunning(true)
	report, err := s.runner.Run(runCtx, trigger)
	metrics.SetPipelineRunning(false)

	if errors.Is(err, recommend.ErrRunInProgress) {
		s.logger.Debug().Str("trigger", string(trigger)).Msg("run skipped, another run is in progress")
		metrics.RecordTriggerCoalesced()
		return
	}

	metrics.RecordPipelineRun(report)
	if err != nil {
		if report != nil {
			runCtx = logging.ContextWithRunID(runCtx, report.RunID)
		}
		logging.Ctx(runCtx).Warn().Err(err).Str("trigger", string(trigger)).Msg("pipeline run failed (will retry on schedule)")
	}
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}

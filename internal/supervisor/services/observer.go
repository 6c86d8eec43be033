// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package services

import (
	"context"

	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
)

// meteredObserver tags the context with the run ID and counts failures of
// the wrapped observer.
type meteredObserver struct {
	recommend.RunObserver
}

// WithObserverMetrics wraps o so that failed notifications increment the
// observer error counter. A nil observer is returned unchanged.
func WithObserverMetrics(o recommend.RunObserver) recommend.RunObserver {
	if o == nil {
		return nil
	}
	return &meteredObserver{RunObserver: o}
}

func (m *meteredObserver) OnRunComplete(ctx context.Context, report *recommend.RunReport) error {
	if report != nil {
		ctx = logging.ContextWithRunID(ctx, report.RunID)
	}
	err := m.RunObserver.OnRunComplete(ctx, report)
	if err != nil {
		metrics.RecordObserverError(m.Name())
	}
	return err
}

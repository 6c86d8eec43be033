// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"context"
	"time"

	"github.com/tomtom215/showroom/internal/cache"
	"github.com/tomtom215/showroom/internal/database"
	"github.com/tomtom215/showroom/internal/recommend"
)

// Store is the persistence surface used by the HTTP handlers.
type Store interface {
	Ping(ctx context.Context) error
	GetStats(ctx context.Context) (*database.Stats, error)
	GetProduct(ctx context.Context, id string) (*database.StoredProduct, error)
	GetRecommendations(ctx context.Context, productID string, strategy recommend.StrategyType) ([]recommend.RecommendationSet, error)
	InsertProducts(ctx context.Context, products []recommend.Product) (int64, error)
	InsertInteractions(ctx context.Context, interactions []recommend.Interaction) (int64, error)
}

// RunHistory exposes persisted run reports.
type RunHistory interface {
	List(ctx context.Context, limit int) ([]*recommend.RunReport, error)
	Get(ctx context.Context, runID string) (*recommend.RunReport, error)
	Latest(ctx context.Context) (*recommend.RunReport, error)
}

// PipelineView reports in-process pipeline state.
type PipelineView interface {
	Status() recommend.PipelineStatus
}

// RunTrigger queues a manual run. It returns false when a run is
// already queued.
type RunTrigger interface {
	Trigger() bool
}

// Handler serves the HTTP API.
type Handler struct {
	store     Store
	runs      RunHistory
	pipeline  PipelineView
	trigger   RunTrigger
	version   string
	startTime time.Time

	// recs caches recommendation lookups until the next run.
	recs *cache.LRU[[]recommend.RecommendationSet]
}

// Recommendation cache limits.
const (
	recCacheSize = 10000
	recCacheTTL  = 5 * time.Minute
)

// NewHandler creates a handler. runs, pipeline and trigger may be nil;
// endpoints that need them then answer 503.
func NewHandler(store Store, runs RunHistory, pipeline PipelineView, trigger RunTrigger, version string) *Handler {
	return &Handler{
		store:     store,
		runs:      runs,
		pipeline:  pipeline,
		trigger:   trigger,
		version:   version,
		startTime: time.Now(),
		recs:      cache.New[[]recommend.RecommendationSet](recCacheSize, recCacheTTL),
	}
}

// Name implements recommend.RunObserver.
func (h *Handler) Name() string {
	return "api-cache"
}

// OnRunComplete drops cached recommendation lookups. Failed runs clear too,
// since a strategy may have been replaced before the failure.
func (h *Handler) OnRunComplete(_ context.Context, _ *recommend.RunReport) error {
	h.recs.Clear()
	return nil
}

func recCacheKey(productID string, strategy recommend.StrategyType) string {
	return productID + "|" + string(strategy)
}

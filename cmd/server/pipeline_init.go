// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/recommend/algorithms"
	"github.com/tomtom215/showroom/internal/supervisor/services"
)

// initPipeline builds the recommendation pipeline and registers the
// recommenders for every enabled strategy.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initPipeline(cfg *config.PipelineConfig, source recommend.DataSource, sink recommend.ResultSink, logger zerolog.Logger) (*recommend.Pipeline, error) {
	rc := cfg.RecommendConfig()

	logger.Info().
		Int("features", len(rc.Features.Features)).
		Str("linkage", string(rc.Clustering.Linkage)).
		Str("metric", string(rc.Clustering.Metric)).
		Str("criterion", string(rc.Clustering.Criterion)).
		Int("num_clusters", rc.Clustering.NumClusters).
		Int("max_recommendations", rc.MaxRecommendations).
		Bool("cluster_proximity", rc.Strategies.ClusterProximity).
		Bool("co_occurrence", rc.Strategies.CoOccurrence).
		Msg("initializing recommendation pipeline")

	pipeline, err := recommend.NewPipeline(rc, source, sink, logger)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	var proximity recommend.ProximityRecommender
	if rc.Strategies.ClusterProximity {
		proximity = algorithms.NewPriceProximity(algorithms.PriceProximityConfig{
			MaxPerProduct: rc.MaxRecommendations,
		})
	}
	var coOccurrence recommend.CoOccurrenceRecommender
	if rc.Strategies.CoOccurrence {
		coOccurrence = algorithms.NewCoVisitation(algorithms.CoVisitConfig{
			MaxPerProduct: rc.MaxRecommendations,
		})
	}
	pipeline.SetRecommenders(proximity, coOccurrence)

	return pipeline, nil
}

// registerObservers wraps every non-nil observer with metrics and attaches it.
func registerObservers(pipeline *recommend.Pipeline, observers ...recommend.RunObserver) int {
	registered := 0
	for _, o := range observers {
		if o == nil {
			continue
		}
		pipeline.AddObserver(services.WithObserverMetrics(o))
		registered++
	}
	return registered
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package config

import (
	"github.com/tomtom215/showroom/internal/recommend"
)

// defaultPipelineConfig mirrors recommend.DefaultConfig in koanf form.
func defaultPipelineConfig() PipelineConfig {
	rc := recommend.DefaultConfig()

	features := make([]FeatureEntry, 0, len(rc.Features.Features))
	for _, f := range rc.Features.Features {
		features = append(features, FeatureEntry{Name: f.Name, Kind: string(f.Kind), Weight: f.Weight})
	}

	types := make([]string, 0, len(rc.InteractionTypes))
	for _, it := range rc.InteractionTypes {
		types = append(types, string(it))
	}

	return PipelineConfig{
		Features:        features,
		LogTransform:    append([]string(nil), rc.Features.LogTransform...),
		PriceField:      rc.Features.PriceField,
		MissingCategory: rc.Features.MissingCategory,
		Clustering: ClusteringConfig{
			Linkage:           string(rc.Clustering.Linkage),
			Metric:            string(rc.Clustering.Metric),
			Criterion:         string(rc.Clustering.Criterion),
			NumClusters:       rc.Clustering.NumClusters,
			DistanceThreshold: rc.Clustering.DistanceThreshold,
		},
		MaxRecommendations: rc.MaxRecommendations,
		Strategies: StrategiesConfig{
			ClusterProximity: rc.Strategies.ClusterProximity,
			CoOccurrence:     rc.Strategies.CoOccurrence,
		},
		InteractionTypes: types,
		Interval:         rc.Schedule.Interval,
		RunOnStartup:     rc.Schedule.RunOnStartup,
		RunTimeout:       rc.Schedule.Timeout,
	}
}

// RecommendConfig converts the pipeline section into the pipeline's own
// configuration type. Enum values are lowercased and passed through;
// recommend.Config.Validate rejects unknown ones.
func (p *PipelineConfig) RecommendConfig() *recommend.Config {
	features := make([]recommend.FeatureSpec, 0, len(p.Features))
	for _, f := range p.Features {
		features = append(features, recommend.FeatureSpec{
			Name:   f.Name,
			Kind:   recommend.FeatureKind(lower(f.Kind)),
			Weight: f.Weight,
		})
	}

	types := make([]recommend.InteractionType, 0, len(p.InteractionTypes))
	for _, it := range p.InteractionTypes {
		types = append(types, recommend.InteractionType(lower(it)))
	}

	return &recommend.Config{
		Features: recommend.FeatureConfig{
			Features:        features,
			LogTransform:    append([]string(nil), p.LogTransform...),
			PriceField:      p.PriceField,
			MissingCategory: p.MissingCategory,
		},
		Clustering: recommend.ClusterConfig{
			Linkage:           recommend.Linkage(lower(p.Clustering.Linkage)),
			Metric:            recommend.Metric(lower(p.Clustering.Metric)),
			Criterion:         recommend.Criterion(lower(p.Clustering.Criterion)),
			NumClusters:       p.Clustering.NumClusters,
			DistanceThreshold: p.Clustering.DistanceThreshold,
		},
		MaxRecommendations: p.MaxRecommendations,
		Strategies: recommend.StrategiesConfig{
			ClusterProximity: p.Strategies.ClusterProximity,
			CoOccurrence:     p.Strategies.CoOccurrence,
		},
		InteractionTypes: types,
		Schedule: recommend.ScheduleConfig{
			Interval:     p.Interval,
			RunOnStartup: p.RunOnStartup,
			Timeout:      p.RunTimeout,
		},
	}
}

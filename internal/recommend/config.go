// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// FeatureKind distinguishes numeric from categorical features.
type FeatureKind string

const (
	// FeatureNumeric features are imputed, optionally log-transformed and standardized.
	FeatureNumeric FeatureKind = "numeric"
	// FeatureCategorical features are one-hot encoded.
	FeatureCategorical FeatureKind = "categorical"
)

// Linkage names a hierarchical clustering merge criterion.
type Linkage string

const (
	LinkageWard     Linkage = "ward"
	LinkageComplete Linkage = "complete"
	LinkageAverage  Linkage = "average"
	LinkageSingle   Linkage = "single"
)

// Metric names a pairwise distance function.
type Metric string

const (
	MetricEuclidean Metric = "euclidean"
	MetricManhattan Metric = "manhattan"
	MetricChebyshev Metric = "chebyshev"
	MetricCosine    Metric = "cosine"
)

// Criterion selects how the dendrogram is cut into flat clusters.
type Criterion string

const (
	// CriterionMaxClust cuts the tree into a fixed number of clusters.
	CriterionMaxClust Criterion = "maxclust"
	// CriterionDistance merges while the linkage height stays below a threshold.
	CriterionDistance Criterion = "distance"
)

// Config contains all configuration for the recommendation pipeline.
type Config struct {
	// Features describes how products become feature vectors.
	Features FeatureConfig `json:"features"`

	// Clustering contains hierarchical clustering parameters.
	Clustering ClusterConfig `json:"clustering"`

	// MaxRecommendations caps every stored recommendation list.
	// Default: 5.
	MaxRecommendations int `json:"max_recommendations"`

	// Strategies toggles the individual recommendation strategies.
	Strategies StrategiesConfig `json:"strategies"`

	// InteractionTypes restricts which interactions feed co-occurrence.
	// Default: [view].
	InteractionTypes []InteractionType `json:"interaction_types"`

	// Schedule contains run scheduling parameters.
	Schedule ScheduleConfig `json:"schedule"`
}

// FeatureSpec declares a single feature and its weight.
type FeatureSpec struct {
	Name   string      `json:"name"`
	Kind   FeatureKind `json:"kind"`
	Weight float64     `json:"weight"`
}

// FeatureConfig is the immutable feature table used by the Preparer.
type FeatureConfig struct {
	// Features lists every feature in output order within its kind.
	Features []FeatureSpec `json:"features"`

	// LogTransform names numeric features that receive log1p before scaling.
	// Default: [travelDistance].
	LogTransform []string `json:"log_transform"`

	// PriceField is the attribute holding the product price.
	// It may be a feature but is never log-transformed.
	// Default: price.
	PriceField string `json:"price_field"`

	// MissingCategory replaces nil or blank categorical values.
	// Default: Unknown.
	MissingCategory string `json:"missing_category"`
}

// ClusterConfig contains hierarchical clustering parameters.
type ClusterConfig struct {
	// Linkage is the merge criterion.
	// Default: ward.
	Linkage Linkage `json:"linkage"`

	// Metric is the pairwise distance. Ward requires euclidean.
	// Default: euclidean.
	Metric Metric `json:"metric"`

	// Criterion selects fixed-count or distance-threshold flattening.
	// Default: maxclust.
	Criterion Criterion `json:"criterion"`

	// NumClusters is the requested cluster count for maxclust.
	// It is clamped to [1, n-1] at run time.
	// Default: 10.
	NumClusters int `json:"num_clusters"`

	// DistanceThreshold is the cut height for the distance criterion.
	// Default: 4.5.
	DistanceThreshold float64 `json:"distance_threshold"`
}

// StrategiesConfig toggles recommendation strategies.
type StrategiesConfig struct {
	// ClusterProximity enables clustering-based recommendations.
	// Default: true.
	ClusterProximity bool `json:"cluster_proximity"`

	// CoOccurrence enables co-occurrence recommendations.
	// Default: true.
	CoOccurrence bool `json:"co_occurrence"`
}

// ScheduleConfig contains run scheduling parameters.
type ScheduleConfig struct {
	// Interval is the time between scheduled runs.
	// Default: 1h.
	Interval time.Duration `json:"interval"`

	// RunOnStartup triggers a run as soon as the service starts.
	// Default: true.
	RunOnStartup bool `json:"run_on_startup"`

	// Timeout bounds a single run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`
}

// DefaultFeatures returns the default weighted feature table for vehicle listings.
func DefaultFeatures() []FeatureSpec {
	return []FeatureSpec{
		{Name: "price", Kind: FeatureNumeric, Weight: 1.0},
		{Name: "yearOfAssembly", Kind: FeatureNumeric, Weight: 0.8},
		{Name: "cc", Kind: FeatureNumeric, Weight: 0.6},
		{Name: "numberOfSeats", Kind: FeatureNumeric, Weight: 0.5},
		{Name: "travelDistance", Kind: FeatureNumeric, Weight: 0.3},
		{Name: "type", Kind: FeatureCategorical, Weight: 1.0},
		{Name: "brand", Kind: FeatureCategorical, Weight: 0.9},
		{Name: "driveSystem", Kind: FeatureCategorical, Weight: 0.4},
		{Name: "transmission", Kind: FeatureCategorical, Weight: 0.2},
		{Name: "fuelType", Kind: FeatureCategorical, Weight: 0.2},
	}
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Features: FeatureConfig{
			Features:        DefaultFeatures(),
			LogTransform:    []string{"travelDistance"},
			PriceField:      "price",
			MissingCategory: "Unknown",
		},
		Clustering: ClusterConfig{
			Linkage:           LinkageWard,
			Metric:            MetricEuclidean,
			Criterion:         CriterionMaxClust,
			NumClusters:       10,
			DistanceThreshold: 4.5,
		},
		MaxRecommendations: 5,
		Strategies: StrategiesConfig{
			ClusterProximity: true,
			CoOccurrence:     true,
		},
		InteractionTypes: []InteractionType{InteractionView},
		Schedule: ScheduleConfig{
			Interval:     time.Hour,
			RunOnStartup: true,
			Timeout:      30 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if err := c.Clustering.Validate(); err != nil {
		return err
	}

	if c.MaxRecommendations < 1 {
		return fmt.Errorf("%w: max_recommendations must be positive, got %d", ErrInvalidConfig, c.MaxRecommendations)
	}
	for _, it := range c.InteractionTypes {
		if _, err := ParseInteractionType(string(it)); err != nil {
			return fmt.Errorf("%w: interaction_types: %v", ErrInvalidConfig, err)
		}
	}
	if c.Strategies.CoOccurrence && len(c.InteractionTypes) == 0 {
		return fmt.Errorf("%w: interaction_types must not be empty when co-occurrence is enabled", ErrInvalidConfig)
	}

	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("%w: schedule.interval must be positive, got %v", ErrInvalidConfig, c.Schedule.Interval)
	}
	if c.Schedule.Timeout <= 0 {
		return fmt.Errorf("%w: schedule.timeout must be positive, got %v", ErrInvalidConfig, c.Schedule.Timeout)
	}

	return nil
}

// Validate checks the feature table invariants.
func (f *FeatureConfig) Validate() error {
	if len(f.Features) == 0 {
		return fmt.Errorf("%w: features must not be empty", ErrInvalidConfig)
	}

	kinds := make(map[string]FeatureKind, len(f.Features))
	for i, spec := range f.Features {
		if spec.Name == "" {
			return fmt.Errorf("%w: features[%d].name must not be empty", ErrInvalidConfig, i)
		}
		if spec.Kind != FeatureNumeric && spec.Kind != FeatureCategorical {
			return fmt.Errorf("%w: features[%d].kind must be numeric or categorical, got %q", ErrInvalidConfig, i, spec.Kind)
		}
		if spec.Weight <= 0 {
			return fmt.Errorf("%w: features[%d].weight must be positive, got %f", ErrInvalidConfig, i, spec.Weight)
		}
		if _, dup := kinds[spec.Name]; dup {
			return fmt.Errorf("%w: feature %q declared more than once", ErrInvalidConfig, spec.Name)
		}
		kinds[spec.Name] = spec.Kind
	}

	for _, name := range f.LogTransform {
		if name == f.PriceField {
			return fmt.Errorf("%w: price field %q must not be log-transformed", ErrInvalidConfig, name)
		}
		kind, ok := kinds[name]
		if !ok {
			return fmt.Errorf("%w: log_transform names undeclared feature %q", ErrInvalidConfig, name)
		}
		if kind != FeatureNumeric {
			return fmt.Errorf("%w: log_transform feature %q is not numeric", ErrInvalidConfig, name)
		}
	}

	if f.PriceField == "" {
		return fmt.Errorf("%w: price_field must not be empty", ErrInvalidConfig)
	}
	if f.MissingCategory == "" {
		return fmt.Errorf("%w: missing_category must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Weight returns the declared weight of a feature, or 0 if undeclared.
func (f *FeatureConfig) Weight(name string) float64 {
	for _, spec := range f.Features {
		if spec.Name == name {
			return spec.Weight
		}
	}
	return 0
}

// Validate checks clustering parameters.
func (c *ClusterConfig) Validate() error {
	switch c.Linkage {
	case LinkageWard, LinkageComplete, LinkageAverage, LinkageSingle:
	default:
		return fmt.Errorf("%w: clustering.linkage must be one of ward, complete, average, single, got %q", ErrInvalidConfig, c.Linkage)
	}
	switch c.Metric {
	case MetricEuclidean, MetricManhattan, MetricChebyshev, MetricCosine:
	default:
		return fmt.Errorf("%w: clustering.metric must be one of euclidean, manhattan, chebyshev, cosine, got %q", ErrInvalidConfig, c.Metric)
	}
	if c.Linkage == LinkageWard && c.Metric != MetricEuclidean {
		return fmt.Errorf("%w: ward linkage requires euclidean metric, got %q", ErrInvalidConfig, c.Metric)
	}

	switch c.Criterion {
	case CriterionMaxClust:
		if c.NumClusters < 1 {
			return fmt.Errorf("%w: clustering.num_clusters must be positive, got %d", ErrInvalidConfig, c.NumClusters)
		}
	case CriterionDistance:
		if c.DistanceThreshold <= 0 {
			return fmt.Errorf("%w: clustering.distance_threshold must be positive, got %f", ErrInvalidConfig, c.DistanceThreshold)
		}
	default:
		return fmt.Errorf("%w: clustering.criterion must be maxclust or distance, got %q", ErrInvalidConfig, c.Criterion)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Features.Features = append([]FeatureSpec(nil), c.Features.Features...)
	clone.Features.LogTransform = append([]string(nil), c.Features.LogTransform...)
	clone.InteractionTypes = append([]InteractionType(nil), c.InteractionTypes...)
	return &clone
}

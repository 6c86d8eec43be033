// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"context"
	"fmt"
	"time"
)

// InteractionType classifies a user-product interaction recorded by the showroom backend.
type InteractionType string

const (
	// InteractionView is a product detail page view.
	InteractionView InteractionType = "view"
	// InteractionBookmark is a product saved to the user's bookmarks.
	InteractionBookmark InteractionType = "bookmark"
	// InteractionContactSeller is a contact request sent to the seller.
	InteractionContactSeller InteractionType = "contact_seller"
)

// ParseInteractionType converts a stored interaction type string.
func ParseInteractionType(s string) (InteractionType, error) {
	switch InteractionType(s) {
	case InteractionView, InteractionBookmark, InteractionContactSeller:
		return InteractionType(s), nil
	default:
		return "", fmt.Errorf("unknown interaction type %q", s)
	}
}

// StrategyType tags a recommendation set with the strategy that produced it.
// A run replaces every stored set of a strategy type wholesale.
type StrategyType string

const (
	// StrategyClusterProximity ranks same-cluster products by price distance.
	// The value matches the type stored by the showroom backend.
	StrategyClusterProximity StrategyType = "clustering-based"
	// StrategyCoOccurrence ranks products co-viewed by the same users.
	StrategyCoOccurrence StrategyType = "co-occurrence"
)

// ParseStrategyType converts a configured or requested strategy name.
func ParseStrategyType(s string) (StrategyType, error) {
	switch StrategyType(s) {
	case StrategyClusterProximity, StrategyCoOccurrence:
		return StrategyType(s), nil
	default:
		return "", fmt.Errorf("unknown strategy type %q", s)
	}
}

// Product is a catalog entry as read from the data source.
type Product struct {
	// ID is the opaque, stable product identifier.
	ID string `json:"id"`

	// Status is the listing status (e.g. "Tersedia", "Terjual").
	Status string `json:"status,omitempty"`

	// Price is used for proximity ranking. Nil when the listing has no price.
	Price *float64 `json:"price,omitempty"`

	// Attributes holds raw feature values keyed by feature name.
	// Values may be numbers, numeric strings, strings or nil.
	Attributes map[string]any `json:"attributes"`
}

// Interaction is a single (user, product) event.
type Interaction struct {
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// ClusterAssignment maps a product to a cluster label.
// Labels carry no meaning beyond co-membership and are not stable across runs.
type ClusterAssignment struct {
	ProductID string `json:"product_id"`
	ClusterID int    `json:"cluster_id"`
}

// ScoredItem is a recommended product with the score that ranked it.
// For co-occurrence the score is the pair count (higher is better); for
// cluster proximity it is the absolute price distance (lower is better).
type ScoredItem struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// RecommendationSet is the persisted list of similar products for one source product.
type RecommendationSet struct {
	// ProductID is the source product.
	ProductID string `json:"product_id"`

	// Recommendations is ordered best match first and never contains ProductID.
	Recommendations []string `json:"recommendations"`

	// StrategyType is the strategy that produced the list.
	StrategyType StrategyType `json:"type"`

	// ClusterID is set for cluster-proximity sets.
	ClusterID *int `json:"cluster_id,omitempty"`

	// LastUpdated is the time the set was computed.
	LastUpdated time.Time `json:"last_updated"`
}

// ClusterWriteResult reports the outcome of a cluster assignment upsert.
type ClusterWriteResult struct {
	// Matched is the number of assignments whose product exists in the sink.
	Matched int64 `json:"matched"`

	// Modified is the number of products whose stored cluster changed.
	Modified int64 `json:"modified"`

	// Skipped counts assignments dropped because the id could not be resolved.
	Skipped int `json:"skipped"`
}

// ReplaceResult reports the outcome of replacing a strategy's recommendation sets.
type ReplaceResult struct {
	Deleted  int64 `json:"deleted"`
	Inserted int64 `json:"inserted"`
	Skipped  int   `json:"skipped"`
}

// DataSource provides pipeline inputs.
// This is implemented by the database layer.
type DataSource interface {
	// GetProducts returns every product eligible for clustering.
	GetProducts(ctx context.Context) ([]Product, error)

	// GetInteractions returns interactions restricted to the given types.
	// Duplicates may be present.
	GetInteractions(ctx context.Context, types []InteractionType) ([]Interaction, error)
}

// ResultSink persists pipeline outputs.
type ResultSink interface {
	// UpdateClusterAssignments sets the cluster of every matched product.
	// Unresolvable ids are skipped and counted, not fatal.
	UpdateClusterAssignments(ctx context.Context, assignments []ClusterAssignment) (ClusterWriteResult, error)

	// ReplaceRecommendations deletes every stored set of the strategy type
	// and inserts the given batch.
	ReplaceRecommendations(ctx context.Context, strategy StrategyType, sets []RecommendationSet) (ReplaceResult, error)
}

// RunObserver is notified after every pipeline run.
// Observers must not retain the report beyond the call.
type RunObserver interface {
	Name() string
	OnRunComplete(ctx context.Context, report *RunReport) error
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/showroom/internal/recommend"
)

// PriceProximity recommends members of the same cluster with the closest price.
//
// For a source product s in cluster C the candidates are every other priced
// member of C, scored by |price(candidate) - price(s)| ascending. Products
// without a price are never candidates and get no list of their own.
type PriceProximity struct {
	BaseAlgorithm
}

// PriceProximityConfig contains configuration for the price-proximity recommender.
type PriceProximityConfig struct {
	// MaxPerProduct caps the list length for every product.
	MaxPerProduct int
}

// NewPriceProximity creates a new price-proximity recommender.
func NewPriceProximity(cfg PriceProximityConfig) *PriceProximity {
	return &PriceProximity{
		BaseAlgorithm: NewBaseAlgorithm(string(recommend.StrategyClusterProximity), cfg.MaxPerProduct),
	}
}

// Recommend ranks same-cluster products for every priced product in a cluster
// of at least two members. Ties keep member order.
func (p *PriceProximity) Recommend(ctx context.Context, assignments []recommend.ClusterAssignment, prices map[string]float64) (map[string][]recommend.ScoredItem, error) {
	result := make(map[string][]recommend.ScoredItem)
	if len(assignments) == 0 {
		return result, nil
	}

	// Group members by cluster in order of first appearance.
	var clusterOrder []int
	members := make(map[int][]string)
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if _, dup := seen[a.ProductID]; dup {
			continue
		}
		seen[a.ProductID] = struct{}{}

		if _, ok := members[a.ClusterID]; !ok {
			clusterOrder = append(clusterOrder, a.ClusterID)
		}
		members[a.ClusterID] = append(members[a.ClusterID], a.ProductID)
	}

	for _, clusterID := range clusterOrder {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		group := members[clusterID]
		if len(group) < 2 {
			continue
		}

		for _, source := range group {
			sourcePrice, ok := prices[source]
			if !ok {
				continue
			}

			candidates := make([]candidate, 0, len(group)-1)
			for i, other := range group {
				if other == source {
					continue
				}
				price, ok := prices[other]
				if !ok {
					continue
				}
				candidates = append(candidates, candidate{
					id:    other,
					score: math.Abs(price - sourcePrice),
					order: i,
				})
			}

			result[source] = rank(candidates, p.maxPerProduct, false)
		}
	}
	return result, nil
}

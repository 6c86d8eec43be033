// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/showroom/internal/recommend"
)

// DefaultMaxPerProduct is used when a recommender is configured with a non-positive limit.
const DefaultMaxPerProduct = 5

// BaseAlgorithm provides common functionality for all recommenders.
type BaseAlgorithm struct {
	name          string
	maxPerProduct int
}

// NewBaseAlgorithm creates a new base algorithm with the given name and list limit.
func NewBaseAlgorithm(name string, maxPerProduct int) BaseAlgorithm {
	if maxPerProduct < 1 {
		maxPerProduct = DefaultMaxPerProduct
	}
	return BaseAlgorithm{
		name:          name,
		maxPerProduct: maxPerProduct,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// MaxPerProduct returns the list length cap.
func (b *BaseAlgorithm) MaxPerProduct() int {
	return b.maxPerProduct
}

// candidate is a scored partner with its discovery position for tie-breaking.
type candidate struct {
	id    string
	score float64
	order int
}

// rank sorts candidates by score and truncates to the limit. Equal scores keep
// discovery order.
func rank(candidates []candidate, limit int, descending bool) []recommend.ScoredItem {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			if descending {
				return a.score > b.score
			}
			return a.score < b.score
		}
		return a.order < b.order
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	items := make([]recommend.ScoredItem, len(candidates))
	for i, c := range candidates {
		items[i] = recommend.ScoredItem{ProductID: c.id, Score: c.score}
	}
	return items
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

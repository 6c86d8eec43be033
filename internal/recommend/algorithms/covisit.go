// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package algorithms

import (
	"context"

	"github.com/tomtom215/showroom/internal/recommend"
)

// CoVisitation recommends products that were viewed by the same users.
//
// Every user contributes one count to each unordered pair of distinct products
// they interacted with, regardless of how often they viewed either product:
//
//	covisit[a][b] = number of users who interacted with both a and b
//
// Counts are kept in a sparse map keyed by the canonical (lesser, greater)
// pair, so memory grows with observed pairs rather than catalog size squared.
type CoVisitation struct {
	BaseAlgorithm
}

// CoVisitConfig contains configuration for the co-visitation algorithm.
type CoVisitConfig struct {
	// MaxPerProduct caps the list length for every product.
	MaxPerProduct int
}

// NewCoVisitation creates a new co-visitation recommender.
func NewCoVisitation(cfg CoVisitConfig) *CoVisitation {
	return &CoVisitation{
		BaseAlgorithm: NewBaseAlgorithm(string(recommend.StrategyCoOccurrence), cfg.MaxPerProduct),
	}
}

// pairKey is an unordered product pair with a < b.
type pairKey struct {
	a, b string
}

func canonicalPair(a, b string) pairKey {
	// Ensure consistent ordering for symmetric pairs
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Recommend builds a ranked partner list for every product with at least one
// co-visited partner. Scores are pair counts; ties keep partner discovery order.
//
//nolint:gocritic // rangeValCopy: Interaction passed by value in range, acceptable for clarity
func (c *CoVisitation) Recommend(ctx context.Context, interactions []recommend.Interaction) (map[string][]recommend.ScoredItem, error) {
	if len(interactions) == 0 {
		return map[string][]recommend.ScoredItem{}, nil
	}

	// Group deduplicated products by user, both in order of first appearance.
	var users []string
	userProducts := make(map[string][]string)
	seen := make(map[[2]string]struct{}, len(interactions))
	for _, inter := range interactions {
		if inter.UserID == "" || inter.ProductID == "" {
			continue
		}
		key := [2]string{inter.UserID, inter.ProductID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := userProducts[inter.UserID]; !ok {
			users = append(users, inter.UserID)
		}
		userProducts[inter.UserID] = append(userProducts[inter.UserID], inter.ProductID)
	}

	counts := make(map[pairKey]int)
	partners := make(map[string][]string)

	for i, user := range users {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		products := userProducts[user]
		for x := 0; x < len(products); x++ {
			for y := x + 1; y < len(products); y++ {
				key := canonicalPair(products[x], products[y])
				if counts[key] == 0 {
					partners[products[x]] = append(partners[products[x]], products[y])
					partners[products[y]] = append(partners[products[y]], products[x])
				}
				counts[key]++
			}
		}
	}

	result := make(map[string][]recommend.ScoredItem, len(partners))
	for product, list := range partners {
		candidates := make([]candidate, len(list))
		for i, partner := range list {
			candidates[i] = candidate{
				id:    partner,
				score: float64(counts[canonicalPair(product, partner)]),
				order: i,
			}
		}
		result[product] = rank(candidates, c.maxPerProduct, true)
	}
	return result, nil
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Clusterer groups feature rows with hierarchical agglomerative clustering.
type Clusterer struct {
	cfg    ClusterConfig
	logger zerolog.Logger
}

// NewClusterer validates the clustering parameters and returns a Clusterer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClusterer(cfg ClusterConfig, logger zerolog.Logger) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Clusterer{
		cfg:    cfg,
		logger: logger.With().Str("component", "clusterer").Logger(),
	}, nil
}

// Linkage builds the full dendrogram of the rows of data, merges sorted by height.
func (c *Clusterer) Linkage(ctx context.Context, data mat.Matrix) ([]Merge, error) {
	if data == nil {
		return nil, nil
	}
	rows, cols := data.Dims()
	if rows < 2 || cols == 0 {
		return nil, nil
	}

	dist, err := pairwiseDistances(ctx, data, c.cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("pairwise distances: %w", err)
	}
	merges, err := buildHierarchy(ctx, dist, c.cfg.Linkage)
	if err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	return merges, nil
}

// Cluster assigns a label to every row of data.
// Labels are 0..k-1 numbered by first appearance in row order.
func (c *Clusterer) Cluster(ctx context.Context, data *mat.Dense) ([]int, error) {
	if data == nil || data.IsEmpty() {
		return []int{}, nil
	}
	rows, cols := data.Dims()
	switch {
	case rows == 0 || cols == 0:
		return []int{}, nil
	case rows == 1:
		return []int{0}, nil
	}

	merges, err := c.Linkage(ctx, data)
	if err != nil {
		return nil, err
	}

	var apply int
	switch c.cfg.Criterion {
	case CriterionDistance:
		for apply < len(merges) && merges[apply].Height < c.cfg.DistanceThreshold {
			apply++
		}
	default:
		k := EffectiveClusterCount(c.cfg.NumClusters, rows)
		if k != c.cfg.NumClusters {
			c.logger.Debug().
				Int("requested", c.cfg.NumClusters).
				Int("effective", k).
				Int("samples", rows).
				Msg("Cluster count clamped")
		}
		apply = rows - k
	}

	labels := flatten(rows, merges[:apply])

	c.logger.Debug().
		Int("samples", rows).
		Int("merges_applied", apply).
		Int("clusters", countClusters(labels)).
		Str("linkage", string(c.cfg.Linkage)).
		Str("criterion", string(c.cfg.Criterion)).
		Msg("Clustering complete")
	return labels, nil
}

// EffectiveClusterCount clamps a requested cluster count to [1, n-1] for n > 1.
func EffectiveClusterCount(requested, n int) int {
	if n <= 1 {
		return n
	}
	k := requested
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}
	return k
}

// flatten applies merges to n singletons and numbers the resulting components.
func flatten(n int, merges []Merge) []int {
	set := newDisjointSet(n)
	for _, m := range merges {
		set.union(m.A, m.B)
	}

	labels := make([]int, n)
	ids := make(map[int]int)
	for i := 0; i < n; i++ {
		root := set.find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		labels[i] = id
	}
	return labels
}

func countClusters(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

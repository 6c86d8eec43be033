// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes table sizes for health and status reporting.
type Stats struct {
	Products          int64 `json:"products"`
	ClusteredProducts int64 `json:"clustered_products"`
	Interactions      int64 `json:"interactions"`
	Recommendations   int64 `json:"recommendations"`
}

// ensureContext applies a 30s timeout when ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetStats returns the count of records in the main tables
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var s Stats
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE cluster_id IS NOT NULL),
			(SELECT COUNT(*) FROM user_interactions),
			(SELECT COUNT(*) FROM product_recommendations)
	`).Scan(&s.Products, &s.ClusteredProducts, &s.Interactions, &s.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &s, nil
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
database_schema.go - Database Schema Management

Tables:
  - products: catalog pushed by the showroom backend. The pipeline only
    writes cluster_id and cluster_updated_at.
  - user_interactions: append-only (user, product, type, timestamp) events
  - product_recommendations: one row per (product_id, strategy_type); rows of
    a strategy are replaced wholesale on every run

Index Strategy:
Only columns that are never updated are indexed. DuckDB rewrites an updated
row as delete+insert for indexed columns, so cluster_id stays unindexed.
product_recommendations carries no unique constraint because a run deletes
and reinserts the same keys inside one transaction; uniqueness is enforced
by the writer.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR PRIMARY KEY,
			status VARCHAR NOT NULL DEFAULT '',
			price DOUBLE,
			attributes VARCHAR NOT NULL DEFAULT '{}',
			cluster_id INTEGER,
			cluster_updated_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS user_interactions (
			user_id VARCHAR NOT NULL,
			product_id VARCHAR NOT NULL,
			interaction_type VARCHAR NOT NULL,
			timestamp TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS product_recommendations (
			product_id VARCHAR NOT NULL,
			strategy_type VARCHAR NOT NULL,
			recommendations VARCHAR NOT NULL,
			cluster_id INTEGER,
			last_updated TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates lookup indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_type ON user_interactions(interaction_type);`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_product ON product_recommendations(product_id);`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}

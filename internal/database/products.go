// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/database/query"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/validation"
)

// StoredProduct is a product row including the pipeline-owned cluster columns.
type StoredProduct struct {
	recommend.Product
	ClusterID        *int       `json:"cluster_id,omitempty"`
	ClusterUpdatedAt *time.Time `json:"cluster_updated_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GetProducts returns every product matching the configured status filter,
// ordered by id.
func (db *DB) GetProducts(ctx context.Context) ([]recommend.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewFilter().In(query.ColStatus, db.productStatuses()).Where()

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, status, price, attributes FROM products %s ORDER BY id`, where),
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer closeQuietly(rows)

	var products []recommend.Product
	for rows.Next() {
		var (
			p     recommend.Product
			price sql.NullFloat64
			attrs string
		)
		if err := rows.Scan(&p.ID, &p.Status, &price, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		p.Attributes = decodeAttributes(p.ID, attrs)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// GetProduct returns a single product with its cluster columns.
func (db *DB) GetProduct(ctx context.Context, id string) (*StoredProduct, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		sp        StoredProduct
		price     sql.NullFloat64
		attrs     string
		clusterID sql.NullInt64
		clusterAt sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, status, price, attributes, cluster_id, cluster_updated_at, updated_at
		FROM products WHERE id = ?
	`, id).Scan(&sp.ID, &sp.Status, &price, &attrs, &clusterID, &clusterAt, &sp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	if price.Valid {
		v := price.Float64
		sp.Price = &v
	}
	if clusterID.Valid {
		c := int(clusterID.Int64)
		sp.ClusterID = &c
	}
	if clusterAt.Valid {
		at := clusterAt.Time
		sp.ClusterUpdatedAt = &at
	}
	sp.Attributes = decodeAttributes(sp.ID, attrs)
	return &sp, nil
}

// InsertProducts upserts products by id. Cluster columns of existing rows are
// preserved. Within a batch the last record for an id wins.
func (db *DB) InsertProducts(ctx context.Context, products []recommend.Product) (n int64, err error) {
	if len(products) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	latest := make(map[string]int, len(products))
	for i, p := range products {
		latest[p.ID] = i
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, status, price, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			price = excluded.price,
			attributes = excluded.attributes,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare product upsert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for i, p := range products {
		if latest[p.ID] != i {
			continue
		}

		attrs, err := encodeAttributes(p.Attributes)
		if err != nil {
			return 0, fmt.Errorf("product %s: %w", p.ID, err)
		}

		var price any
		if p.Price != nil {
			price = *p.Price
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.Status, price, attrs, now, now); err != nil {
			return 0, fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit products: %w", err)
	}
	return n, nil
}

// UpdateClusterAssignments sets cluster_id for every matched product.
//
// Assignments with an invalid id are skipped, as are repeated ids after the
// first. Matched counts assignments whose product exists; Modified counts
// products whose stored cluster actually changed.
func (db *DB) UpdateClusterAssignments(ctx context.Context, assignments []recommend.ClusterAssignment) (result recommend.ClusterWriteResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("update_clusters", "products", time.Since(start), err)
	}()

	valid := make([]recommend.ClusterAssignment, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if !validation.IsObjectID(a.ProductID) {
			logging.Warn().Str("product_id", a.ProductID).Msg("Skipping cluster assignment with invalid product id")
			result.Skipped++
			continue
		}
		if _, dup := seen[a.ProductID]; dup {
			logging.Warn().Str("product_id", a.ProductID).Msg("Skipping duplicate cluster assignment")
			result.Skipped++
			continue
		}
		seen[a.ProductID] = struct{}{}
		valid = append(valid, a)
	}
	if len(valid) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	if _, err = tx.ExecContext(ctx, `CREATE OR REPLACE TEMP TABLE cluster_staging (product_id VARCHAR, cluster_id INTEGER)`); err != nil {
		return result, fmt.Errorf("failed to create staging table: %w", err)
	}

	if err = stageAssignments(ctx, tx, valid); err != nil {
		return result, err
	}

	err = tx.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE p.cluster_id IS DISTINCT FROM s.cluster_id)
		FROM cluster_staging s
		JOIN products p ON p.id = s.product_id
	`).Scan(&result.Matched, &result.Modified)
	if err != nil {
		return result, fmt.Errorf("failed to count cluster changes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE products
		SET cluster_id = cluster_staging.cluster_id, cluster_updated_at = ?
		FROM cluster_staging
		WHERE products.id = cluster_staging.product_id
	`, time.Now().UTC()); err != nil {
		return result, fmt.Errorf("failed to update clusters: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS cluster_staging`); err != nil {
		return result, fmt.Errorf("failed to drop staging table: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit cluster assignments: %w", err)
	}

	if unmatched := int64(len(valid)) - result.Matched; unmatched > 0 {
		logging.Info().Int64("unmatched", unmatched).Msg("Cluster assignments without a stored product")
	}
	return result, nil
}

func stageAssignments(ctx context.Context, tx *sql.Tx, assignments []recommend.ClusterAssignment) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cluster_staging (product_id, cluster_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare staging insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, a.ProductID, a.ClusterID); err != nil {
			return fmt.Errorf("failed to stage assignment %s: %w", a.ProductID, err)
		}
	}
	return nil
}

func encodeAttributes(attrs map[string]any) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(b), nil
}

// decodeAttributes returns empty attributes for a corrupt column.
func decodeAttributes(id, raw string) map[string]any {
	attrs := map[string]any{}
	if raw == "" {
		return attrs
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		logging.Warn().Err(err).Str("product_id", id).Msg("Ignoring unreadable product attributes")
		return map[string]any{}
	}
	return attrs
}

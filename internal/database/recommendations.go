// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/database/query"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/validation"
)

// ReplaceRecommendations deletes every stored set of the strategy and inserts
// the batch in one transaction.
//
// Recommended ids that are not valid ObjectIDs are dropped from their list.
// A set is skipped when its product id is invalid, when it repeats an earlier
// product id, or when its list is empty after filtering.
func (db *DB) ReplaceRecommendations(ctx context.Context, strategy recommend.StrategyType, sets []recommend.RecommendationSet) (result recommend.ReplaceResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("replace_recommendations", "product_recommendations", time.Since(start), err)
	}()

	type row struct {
		productID string
		recs      string
		clusterID any
		updated   time.Time
	}

	rows := make([]row, 0, len(sets))
	seen := make(map[string]struct{}, len(sets))
	for _, set := range sets {
		if !validation.IsObjectID(set.ProductID) {
			logging.Warn().Str("product_id", set.ProductID).Str("strategy", string(strategy)).
				Msg("Skipping recommendation set with invalid product id")
			result.Skipped++
			continue
		}
		if _, dup := seen[set.ProductID]; dup {
			logging.Warn().Str("product_id", set.ProductID).Str("strategy", string(strategy)).
				Msg("Skipping duplicate recommendation set")
			result.Skipped++
			continue
		}

		recs := filterObjectIDs(set.ProductID, set.Recommendations)
		if len(recs) == 0 {
			result.Skipped++
			continue
		}
		encoded, encErr := json.Marshal(recs)
		if encErr != nil {
			return result, fmt.Errorf("failed to encode recommendations for %s: %w", set.ProductID, encErr)
		}

		var clusterID any
		if set.ClusterID != nil {
			clusterID = *set.ClusterID
		}
		updated := set.LastUpdated
		if updated.IsZero() {
			updated = time.Now()
		}

		seen[set.ProductID] = struct{}{}
		rows = append(rows, row{
			productID: set.ProductID,
			recs:      string(encoded),
			clusterID: clusterID,
			updated:   updated.UTC(),
		})
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	res, err := tx.ExecContext(ctx, `DELETE FROM product_recommendations WHERE strategy_type = ?`, string(strategy))
	if err != nil {
		return result, fmt.Errorf("failed to delete %s recommendations: %w", strategy, err)
	}
	if result.Deleted, err = res.RowsAffected(); err != nil {
		return result, fmt.Errorf("failed to read deleted count: %w", err)
	}

	if len(rows) > 0 {
		stmt, prepErr := tx.PrepareContext(ctx, `
			INSERT INTO product_recommendations (product_id, strategy_type, recommendations, cluster_id, last_updated)
			VALUES (?, ?, ?, ?, ?)
		`)
		if prepErr != nil {
			err = fmt.Errorf("failed to prepare recommendation insert: %w", prepErr)
			return result, err
		}
		defer closeWithLog(stmt, "prepared statement")

		for _, r := range rows {
			if _, err = stmt.ExecContext(ctx, r.productID, string(strategy), r.recs, r.clusterID, r.updated); err != nil {
				return result, fmt.Errorf("failed to insert recommendations for %s: %w", r.productID, err)
			}
			result.Inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit %s recommendations: %w", strategy, err)
	}
	return result, nil
}

// GetRecommendations returns the stored sets of a product, one per strategy,
// ordered by strategy type. An empty strategy returns every strategy.
// ErrNotFound is returned when nothing is stored.
func (db *DB) GetRecommendations(ctx context.Context, productID string, strategy recommend.StrategyType) ([]recommend.RecommendationSet, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewFilter().
		Eq(query.ColProductID, productID).
		EqIf(query.ColStrategyType, string(strategy)).
		Where()

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT product_id, strategy_type, recommendations, cluster_id, last_updated
		FROM product_recommendations
		%s
		ORDER BY strategy_type
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer closeQuietly(rows)

	var sets []recommend.RecommendationSet
	for rows.Next() {
		var (
			set          recommend.RecommendationSet
			strategyName string
			recs         string
			clusterID    sql.NullInt64
		)
		if err := rows.Scan(&set.ProductID, &strategyName, &recs, &clusterID, &set.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan recommendations: %w", err)
		}
		if err := json.Unmarshal([]byte(recs), &set.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations for %s: %w", set.ProductID, err)
		}
		set.StrategyType = recommend.StrategyType(strategyName)
		if clusterID.Valid {
			c := int(clusterID.Int64)
			set.ClusterID = &c
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	if len(sets) == 0 {
		return nil, ErrNotFound
	}
	return sets, nil
}

func filterObjectIDs(source string, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !validation.IsObjectID(id) {
			logging.Warn().Str("product_id", source).Str("recommended_id", id).
				Msg("Dropping recommendation with invalid product id")
			continue
		}
		out = append(out, id)
	}
	return out
}

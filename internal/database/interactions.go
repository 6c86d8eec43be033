// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/showroom/internal/database/query"
	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
)

// GetInteractions returns interactions of the given types ordered by time,
// limited to the interaction window when one is set. Duplicate
// (user, product) pairs are returned as stored.
func (db *DB) GetInteractions(ctx context.Context, types []recommend.InteractionType) (_ []recommend.Interaction, err error) {
	if len(types) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "user_interactions", time.Since(start), err)
	}()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	where, args := query.NewFilter().
		In(query.ColInteractionType, names).
		Since(query.ColTimestamp, db.interactionCutoff(time.Now())).
		Where()

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT user_id, product_id, interaction_type, timestamp
		FROM user_interactions
		%s
		ORDER BY timestamp, user_id, product_id
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeQuietly(rows)

	var interactions []recommend.Interaction
	for rows.Next() {
		var (
			in       recommend.Interaction
			typeName string
		)
		if err := rows.Scan(&in.UserID, &in.ProductID, &typeName, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		in.Type = recommend.InteractionType(typeName)
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}

	return interactions, nil
}

// InsertInteractions appends interactions. A zero timestamp is stored as now.
func (db *DB) InsertInteractions(ctx context.Context, interactions []recommend.Interaction) (n int64, err error) {
	if len(interactions) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_interactions (user_id, product_id, interaction_type, timestamp)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare interaction insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for _, in := range interactions {
		ts := in.Timestamp
		if ts.IsZero() {
			ts = now
		}
		if _, err := stmt.ExecContext(ctx, in.UserID, in.ProductID, string(in.Type), ts.UTC()); err != nil {
			return 0, fmt.Errorf("failed to insert interaction: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit interactions: %w", err)
	}
	return n, nil
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/showroom/internal/logging"
)

// migration is one append-only schema change. Applied versions are recorded
// in schema_migrations and never run twice.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations must stay sorted by version. Never edit or remove an entry
// once it has shipped; add a new one instead.
var migrations = []migration{
	{
		version: 1,
		name:    "interactions_product_index",
		sql:     `CREATE INDEX IF NOT EXISTS idx_interactions_product ON user_interactions(product_id);`,
	},
	{
		version: 2,
		name:    "recommendations_strategy_index",
		sql:     `CREATE INDEX IF NOT EXISTS idx_recommendations_strategy ON product_recommendations(strategy_type);`,
	},
}

// checkMigrationOrder rejects duplicate or out-of-order versions.
func checkMigrationOrder(list []migration) error {
	prev := 0
	for _, m := range list {
		if m.version <= prev {
			return fmt.Errorf("migration %q has version %d, expected > %d", m.name, m.version, prev)
		}
		prev = m.version
	}
	return nil
}

// migrate applies every migration newer than the recorded schema version.
// Each migration and its bookkeeping row commit in one transaction.
func (db *DB) migrate(list []migration) error {
	if err := checkMigrationOrder(list); err != nil {
		return err
	}

	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range list {
		if m.version <= current {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		applied++
	}

	if applied > 0 {
		logging.Info().Int("count", applied).Int("version", list[len(list)-1].version).Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration v%d: begin: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("migration v%d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		return fmt.Errorf("migration v%d: record: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration v%d: commit: %w", m.version, err)
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version, or 0.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

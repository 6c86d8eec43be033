// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/recommend"
)

var (
	_ recommend.DataSource = (*DB)(nil)
	_ recommend.ResultSink = (*DB)(nil)
)

// DB wraps the DuckDB connection and provides data access methods
type DB struct {
	conn *sql.DB

	// Source filters applied by GetProducts and GetInteractions
	filterMu sync.RWMutex
	statuses []string
	window   time.Duration
}

// New creates a new database connection and initializes the schema
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for database file
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	// No extension is needed; disable auto-install/auto-load to prevent hangs
	// in restricted network environments
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// configureConnectionPool sizes the database/sql pool.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// initialize creates tables, applies migrations and indexes
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.migrate(migrations); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	// Flush the WAL so schema changes never need replay on restart
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}

// SetProductStatuses restricts GetProducts to the given listing statuses.
// An empty list disables the filter.
func (db *DB) SetProductStatuses(statuses []string) {
	cp := make([]string, len(statuses))
	copy(cp, statuses)

	db.filterMu.Lock()
	db.statuses = cp
	db.filterMu.Unlock()
}

func (db *DB) productStatuses() []string {
	db.filterMu.RLock()
	defer db.filterMu.RUnlock()
	return db.statuses
}

// SetInteractionWindow makes GetInteractions skip interactions older than
// window. Zero or negative returns the full history.
func (db *DB) SetInteractionWindow(window time.Duration) {
	db.filterMu.Lock()
	db.window = window
	db.filterMu.Unlock()
}

// interactionCutoff returns the oldest timestamp GetInteractions returns,
// or the zero time when no window is set.
func (db *DB) interactionCutoff(now time.Time) time.Time {
	db.filterMu.RLock()
	defer db.filterMu.RUnlock()
	if db.window <= 0 {
		return time.Time{}
	}
	return now.Add(-db.window)
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close checkpoints and closes the database connection
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	// Force a checkpoint to flush WAL before closing.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

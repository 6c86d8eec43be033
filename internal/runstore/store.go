// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package runstore keeps a bounded history of pipeline run reports in BadgerDB.
//
// Store implements recommend.RunObserver, so registering it on the pipeline is
// enough to record every run:
//
//	store, err := runstore.Open(&cfg.RunStore)
//	pipeline.AddObserver(store)
//
// Reports expire after the configured retention and the oldest reports beyond
// the history limit are pruned on every save. An empty path or ":memory:"
// opens an in-memory store.
package runstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/showroom/internal/config"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	runKeyPrefix   = "run:"
	runIDKeyPrefix = "runid:"
)

// ErrNotFound is returned when a run id is unknown or expired.
var ErrNotFound = errors.New("run not found")

var _ recommend.RunObserver = (*Store)(nil)

// Store is a BadgerDB-backed run history.
type Store struct {
	db           *badger.DB
	retention    time.Duration
	historyLimit int
	gcInterval   time.Duration
}

// Open opens (or creates) the run store described by cfg.
func Open(cfg *config.RunStoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.Path == "" || cfg.Path == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = newBadgerLogger()

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	limit := cfg.HistoryLimit
	if limit < 1 {
		limit = 1
	}

	return &Store{
		db:           db,
		retention:    cfg.Retention,
		historyLimit: limit,
		gcInterval:   10 * time.Minute,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements recommend.RunObserver.
func (s *Store) Name() string {
	return "runstore"
}

// OnRunComplete implements recommend.RunObserver by saving the report.
func (s *Store) OnRunComplete(ctx context.Context, report *recommend.RunReport) error {
	return s.Save(ctx, report)
}

// Save stores a report and prunes history beyond the limit.
func (s *Store) Save(ctx context.Context, report *recommend.RunReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("run report without id")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	key := runKey(report)
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		idEntry := badger.NewEntry([]byte(runIDKeyPrefix+report.RunID), key)
		if s.retention > 0 {
			entry = entry.WithTTL(s.retention)
			idEntry = idEntry.WithTTL(s.retention)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set run: %w", err)
		}
		if err := txn.SetEntry(idEntry); err != nil {
			return fmt.Errorf("set run id mapping: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	pruned, err := s.prune(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to prune run history")
	} else if pruned > 0 {
		logging.Ctx(ctx).Debug().Int("pruned", pruned).Msg("Pruned run history")
	}
	return nil
}

// Get returns a report by run id.
func (s *Store) Get(_ context.Context, runID string) (*recommend.RunReport, error) {
	var report recommend.RunReport

	err := s.db.View(func(txn *badger.Txn) error {
		idItem, err := txn.Get([]byte(runIDKeyPrefix + runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get run id mapping: %w", err)
		}

		key, err := idItem.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read run id mapping: %w", err)
		}

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// List returns up to limit reports, newest first. A limit below 1 or above
// the history limit is clamped to the history limit.
func (s *Store) List(_ context.Context, limit int) ([]*recommend.RunReport, error) {
	if limit < 1 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	reports := make([]*recommend.RunReport, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(reverseIteratorOptions(true))
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(seekLast(prefix)); it.ValidForPrefix(prefix) && len(reports) < limit; it.Next() {
			var report recommend.RunReport
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &report)
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable run report")
				continue
			}
			reports = append(reports, &report)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return reports, nil
}

// Latest returns the newest report, or ErrNotFound when the history is empty.
func (s *Store) Latest(ctx context.Context) (*recommend.RunReport, error) {
	reports, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return reports[0], nil
}

// Count returns the number of stored reports.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// prune deletes the oldest reports beyond the history limit.
func (s *Store) prune(_ context.Context) (int, error) {
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(reverseIteratorOptions(false))
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		seen := 0
		for it.Seek(seekLast(prefix)); it.ValidForPrefix(prefix); it.Next() {
			seen++
			if seen > s.historyLimit {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range stale {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete run: %w", err)
			}
			if id := runIDFromKey(key); id != "" {
				if err := txn.Delete([]byte(runIDKeyPrefix + id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("delete run id mapping: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// runKey orders runs by start time: run:<unix nanos, zero padded>:<run id>
func runKey(report *recommend.RunReport) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", runKeyPrefix, report.StartedAt.UnixNano(), report.RunID))
}

func runIDFromKey(key []byte) string {
	rest := strings.TrimPrefix(string(key), runKeyPrefix)
	_, id, ok := strings.Cut(rest, ":")
	if !ok {
		return ""
	}
	return id
}

func reverseIteratorOptions(prefetch bool) badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = prefetch
	return opts
}

// seekLast returns a key sorting after every key with prefix.
func seekLast(prefix []byte) []byte {
	key := make([]byte, len(prefix)+1)
	copy(key, prefix)
	key[len(prefix)] = 0xFF
	return key
}

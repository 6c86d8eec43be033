// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package runstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/showroom/internal/logging"
)

// gcDiscardRatio is the fraction of stale data a value log file needs before it is rewritten.
const gcDiscardRatio = 0.5

// Serve runs value log garbage collection until ctx is cancelled.
// It implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	if s.db.Opts().InMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Run store garbage collection failed")
			}
		}
	}
}

// RunGC rewrites value log files until no file qualifies.
func (s *Store) RunGC() error {
	if s.db.Opts().InMemory {
		return nil
	}
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return fmt.Errorf("value log gc: %w", err)
		}
		rewrites++
	}
	if rewrites > 0 {
		logging.Debug().Int("rewrites", rewrites).Msg("Run store value log compacted")
	}
	return nil
}

// String implements fmt.Stringer for suture logging.
func (s *Store) String() string {
	return "runstore-gc"
}

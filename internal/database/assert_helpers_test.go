// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/showroom/internal/recommend"
)

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkErrorIs fails the test unless err wraps target
func checkErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}

// checkStrings compares two string slices element by element
func checkStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: expected %v, got %v", name, want, got)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: expected %v, got %v", name, want, got)
			return
		}
	}
}

// countRecommendations returns the number of stored sets of a strategy
func countRecommendations(t *testing.T, db *DB, strategy recommend.StrategyType) int64 {
	t.Helper()
	var n int64
	err := db.conn.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM product_recommendations WHERE strategy_type = ?`, string(strategy)).Scan(&n)
	if err != nil {
		t.Fatalf("count recommendations: %v", err)
	}
	return n
}

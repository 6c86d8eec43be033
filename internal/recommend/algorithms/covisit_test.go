// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package algorithms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/showroom/internal/recommend"
)

func view(user, product string) recommend.Interaction {
	return recommend.Interaction{
		UserID:    user,
		ProductID: product,
		Type:      recommend.InteractionView,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// productIDs extracts the ranked product ids from scored items.
func productIDs(items []recommend.ScoredItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return ids
}

func assertIDs(t *testing.T, label string, got []recommend.ScoredItem, want []string) {
	t.Helper()
	ids := productIDs(got)
	if len(ids) != len(want) {
		t.Errorf("%s = %v, want %v", label, ids, want)
		return
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("%s = %v, want %v", label, ids, want)
			return
		}
	}
}

func TestNewCoVisitation(t *testing.T) {
	tests := []struct {
		name string
		cfg  CoVisitConfig
		want int
	}{
		{"applies default for zero config", CoVisitConfig{}, DefaultMaxPerProduct},
		{"applies default for negative limit", CoVisitConfig{MaxPerProduct: -3}, DefaultMaxPerProduct},
		{"uses provided limit", CoVisitConfig{MaxPerProduct: 12}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewCoVisitation(tt.cfg)
			if cv.MaxPerProduct() != tt.want {
				t.Errorf("MaxPerProduct() = %d, want %d", cv.MaxPerProduct(), tt.want)
			}
			if cv.Name() != "co-occurrence" {
				t.Errorf("Name() = %q, want co-occurrence", cv.Name())
			}
		})
	}
}

func TestCoVisitation_Scenario(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{MaxPerProduct: 5})

	interactions := []recommend.Interaction{
		view("u1", "A"), view("u1", "B"),
		view("u2", "A"), view("u2", "B"),
		view("u3", "B"), view("u3", "C"),
	}

	recs, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	assertIDs(t, "A", recs["A"], []string{"B"})
	assertIDs(t, "C", recs["C"], []string{"B"})
	assertIDs(t, "B", recs["B"], []string{"A", "C"})

	if recs["B"][0].Score != 2 || recs["B"][1].Score != 1 {
		t.Errorf("B scores = %v, want [2 1]", recs["B"])
	}
}

func TestCoVisitation_DeduplicatesUserProductPairs(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{})

	interactions := []recommend.Interaction{
		view("u1", "A"), view("u1", "A"), view("u1", "A"),
		view("u1", "B"), view("u1", "B"),
	}

	recs, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := recs["A"][0].Score; got != 1 {
		t.Errorf("A->B score = %f, want 1 after dedup", got)
	}
}

func TestCoVisitation_Symmetric(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{MaxPerProduct: 100})

	var interactions []recommend.Interaction
	for u := 0; u < 20; u++ {
		for p := 0; p < 6; p++ {
			if (u+p)%3 != 0 {
				interactions = append(interactions, view(fmt.Sprintf("u%d", u), fmt.Sprintf("p%d", (u*p)%9)))
			}
		}
	}

	recs, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	score := func(from, to string) float64 {
		for _, item := range recs[from] {
			if item.ProductID == to {
				return item.Score
			}
		}
		return 0
	}

	for product, items := range recs {
		for _, item := range items {
			if item.ProductID == product {
				t.Errorf("%s recommends itself", product)
			}
			if back := score(item.ProductID, product); back != item.Score {
				t.Errorf("score(%s,%s) = %f but score(%s,%s) = %f", product, item.ProductID, item.Score, item.ProductID, product, back)
			}
		}
	}
}

func TestCoVisitation_TruncatesAndOrders(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{MaxPerProduct: 2})

	// X is co-viewed with D by 3 users, with C by 2, with B and E by 1.
	interactions := []recommend.Interaction{
		view("u1", "X"), view("u1", "B"), view("u1", "C"), view("u1", "D"),
		view("u2", "X"), view("u2", "C"), view("u2", "D"),
		view("u3", "X"), view("u3", "D"), view("u3", "E"),
	}

	recs, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, "X", recs["X"], []string{"D", "C"})

	for product, items := range recs {
		if len(items) > 2 {
			t.Errorf("len(%s) = %d, want <= 2", product, len(items))
		}
		for i := 1; i < len(items); i++ {
			if items[i].Score > items[i-1].Score {
				t.Errorf("%s not sorted by descending score: %v", product, items)
			}
		}
	}
}

func TestCoVisitation_TiesKeepDiscoveryOrder(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{})

	interactions := []recommend.Interaction{
		view("u1", "A"), view("u1", "Z"),
		view("u2", "A"), view("u2", "M"),
		view("u3", "A"), view("u3", "B"),
	}

	recs, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, "A", recs["A"], []string{"Z", "M", "B"})
}

func TestCoVisitation_EdgeCases(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{})
	ctx := context.Background()

	t.Run("no interactions", func(t *testing.T) {
		recs, err := cv.Recommend(ctx, nil)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("Recommend(nil) = %v, want empty", recs)
		}
	})

	t.Run("single product per user", func(t *testing.T) {
		recs, err := cv.Recommend(ctx, []recommend.Interaction{view("u1", "A"), view("u2", "B")})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("Recommend() = %v, want empty", recs)
		}
	})

	t.Run("empty ids ignored", func(t *testing.T) {
		recs, err := cv.Recommend(ctx, []recommend.Interaction{
			view("u1", "A"), view("u1", ""), view("", "B"), view("u1", "C"),
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		assertIDs(t, "A", recs["A"], []string{"C"})
		if _, ok := recs[""]; ok {
			t.Error("empty product id should not get recommendations")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := cv.Recommend(canceled, []recommend.Interaction{view("u1", "A"), view("u1", "B")}); err == nil {
			t.Error("Recommend() with canceled context should fail")
		}
	})
}

func TestCoVisitation_Deterministic(t *testing.T) {
	cv := NewCoVisitation(CoVisitConfig{MaxPerProduct: 3})

	var interactions []recommend.Interaction
	for u := 0; u < 15; u++ {
		for p := 0; p < 5; p++ {
			interactions = append(interactions, view(fmt.Sprintf("u%d", u), fmt.Sprintf("p%d", (u+p*p)%8)))
		}
	}

	first, err := cv.Recommend(context.Background(), interactions)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := cv.Recommend(context.Background(), interactions)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		for product, items := range first {
			assertIDs(t, product, again[product], productIDs(items))
		}
	}
}

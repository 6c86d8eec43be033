// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package algorithms

import (
	"context"
	"fmt"
	"testing"

	"github.com/tomtom215/showroom/internal/recommend"
)

func assign(pairs ...interface{}) []recommend.ClusterAssignment {
	out := make([]recommend.ClusterAssignment, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, recommend.ClusterAssignment{
			ProductID: pairs[i].(string),
			ClusterID: pairs[i+1].(int),
		})
	}
	return out
}

func TestNewPriceProximity(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})
	if pp.MaxPerProduct() != DefaultMaxPerProduct {
		t.Errorf("MaxPerProduct() = %d, want %d", pp.MaxPerProduct(), DefaultMaxPerProduct)
	}
	if pp.Name() != "clustering-based" {
		t.Errorf("Name() = %q, want clustering-based", pp.Name())
	}
}

func TestPriceProximity_Scenario(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{MaxPerProduct: 5})

	assignments := assign("P1", 0, "P2", 0, "P3", 1)
	prices := map[string]float64{"P1": 100, "P2": 105, "P3": 500}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	assertIDs(t, "P1", recs["P1"], []string{"P2"})
	assertIDs(t, "P2", recs["P2"], []string{"P1"})
	assertIDs(t, "P3", recs["P3"], nil)

	if recs["P1"][0].Score != 5 {
		t.Errorf("P1->P2 score = %f, want 5", recs["P1"][0].Score)
	}
}

func TestPriceProximity_RanksByAbsoluteDistance(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{MaxPerProduct: 3})

	assignments := assign("S", 7, "A", 7, "B", 7, "C", 7, "D", 7, "E", 7)
	prices := map[string]float64{"S": 1000, "A": 1400, "B": 900, "C": 1050, "D": 2000, "E": 700}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, "S", recs["S"], []string{"C", "B", "E"})

	for product, items := range recs {
		if len(items) > 3 {
			t.Errorf("len(%s) = %d, want <= 3", product, len(items))
		}
		for i, item := range items {
			if item.ProductID == product {
				t.Errorf("%s recommends itself", product)
			}
			if i > 0 && item.Score < items[i-1].Score {
				t.Errorf("%s distances not non-decreasing: %v", product, items)
			}
		}
	}
}

func TestPriceProximity_TiesKeepMemberOrder(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})

	assignments := assign("S", 1, "high", 1, "low", 1)
	prices := map[string]float64{"S": 100, "high": 110, "low": 90}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, "S", recs["S"], []string{"high", "low"})
}

func TestPriceProximity_ExcludesUnpriced(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})

	assignments := assign("A", 0, "B", 0, "C", 0)
	prices := map[string]float64{"A": 100, "C": 300}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	assertIDs(t, "A", recs["A"], []string{"C"})
	assertIDs(t, "C", recs["C"], []string{"A"})
	if _, ok := recs["B"]; ok {
		t.Error("unpriced product B should get no list")
	}
}

func TestPriceProximity_SkipsSingletonClusters(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})

	var assignments []recommend.ClusterAssignment
	prices := make(map[string]float64)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("p%d", i)
		assignments = append(assignments, recommend.ClusterAssignment{ProductID: id, ClusterID: i})
		prices[id] = float64(i * 100)
	}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend() = %v, want empty for singleton clusters", recs)
	}
}

func TestPriceProximity_StaysWithinCluster(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})

	assignments := assign("A", 0, "B", 1, "C", 0, "D", 1)
	prices := map[string]float64{"A": 100, "B": 101, "C": 500, "D": 900}

	recs, err := pp.Recommend(context.Background(), assignments, prices)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, "A", recs["A"], []string{"C"})
	assertIDs(t, "B", recs["B"], []string{"D"})
}

func TestPriceProximity_EdgeCases(t *testing.T) {
	pp := NewPriceProximity(PriceProximityConfig{})

	t.Run("no assignments", func(t *testing.T) {
		recs, err := pp.Recommend(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("Recommend() = %v, want empty", recs)
		}
	})

	t.Run("duplicate assignments use first", func(t *testing.T) {
		recs, err := pp.Recommend(context.Background(),
			assign("A", 0, "B", 0, "A", 1),
			map[string]float64{"A": 1, "B": 2})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		assertIDs(t, "A", recs["A"], []string{"B"})
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := pp.Recommend(ctx, assign("A", 0, "B", 0), map[string]float64{"A": 1, "B": 2}); err == nil {
			t.Error("Recommend() with canceled context should fail")
		}
	})
}

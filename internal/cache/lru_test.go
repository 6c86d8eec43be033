// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUBasicOperations(t *testing.T) {
	c := New[string](10, time.Minute)

	c.Set("key1", "value1")
	value, ok := c.Get("key1")
	if !ok {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, ok := c.Get("key2"); ok {
		t.Error("Expected key2 to not exist")
	}

	c.Set("key1", "updated")
	if value, _ := c.Get("key1"); value != "updated" {
		t.Errorf("Expected updated, got %v", value)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUExpiration(t *testing.T) {
	c := New[int](10, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected k to exist immediately after set")
	}

	now = now.Add(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected k to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch a so b becomes least recently used
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Expected %s to remain", k)
		}
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestLRUDeleteAndClear(t *testing.T) {
	c := New[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if c.Delete("a") {
		t.Error("Delete(a) twice = true, want false")
	}

	c.Set("c", 3)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be cleared")
	}

	// The list must still work after Clear
	c.Set("d", 4)
	if v, ok := c.Get("d"); !ok || v != 4 {
		t.Errorf("Get(d) = %v, %v after Clear", v, ok)
	}
	if c.GetStats().LastClear.IsZero() {
		t.Error("LastClear not recorded")
	}
}

func TestLRUSetIfGeneration(t *testing.T) {
	c := New[string](10, time.Minute)

	gen := c.Generation()
	if !c.SetIfGeneration("a", "fresh", gen) {
		t.Fatal("SetIfGeneration with current generation = false, want true")
	}

	// A load that started before Clear must not repopulate the cache.
	stale := c.Generation()
	c.Clear()
	if c.Generation() == stale {
		t.Fatal("Clear did not advance the generation")
	}
	if c.SetIfGeneration("b", "stale", stale) {
		t.Error("SetIfGeneration after Clear = true, want false")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("stale value was stored")
	}

	if !c.SetIfGeneration("b", "new", c.Generation()) {
		t.Error("SetIfGeneration with refreshed generation = false, want true")
	}
	if v, ok := c.Get("b"); !ok || v != "new" {
		t.Errorf("Get(b) = %q, %v, want new", v, ok)
	}
}

func TestLRUStats(t *testing.T) {
	c := New[int](10, time.Minute)
	if c.HitRate() != 0 {
		t.Errorf("HitRate() = %v, want 0 with no lookups", c.HitRate())
	}

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.GetStats()
	if s.Hits != 3 || s.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 3/1", s.Hits, s.Misses)
	}
	if s.Entries != 1 {
		t.Errorf("Entries = %d, want 1", s.Entries)
	}
	if rate := c.HitRate(); rate != 75.0 {
		t.Errorf("HitRate() = %v, want 75", rate)
	}
}

func TestLRUDefaults(t *testing.T) {
	c := New[int](0, 0)
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := New[int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*500+i)%150)
				c.Set(key, i)
				c.Get(key)
				if i%100 == 0 {
					c.Clear()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d, exceeds capacity", c.Len())
	}
}

// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package cache provides a bounded in-memory LRU cache with TTL expiration.

The API layer keeps recent recommendation lookups here. Stored lists only
change when a pipeline run replaces them, so the handler clears the whole
cache after every run instead of tracking individual keys.

# Usage

	c := cache.New[[]recommend.RecommendationSet](10000, 5*time.Minute)
	c.Set(key, sets)
	if sets, ok := c.Get(key); ok {
	    // serve cached
	}
	c.Clear() // after a run

Loads that may race with Clear read Generation first and store with
SetIfGeneration, which drops the value if the cache was cleared meanwhile.

# Thread Safety

All methods are safe for concurrent use.
*/
package cache

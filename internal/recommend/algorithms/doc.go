// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package algorithms implements the item-to-item recommendation strategies
// used by the showroom pipeline.
//
// # Strategies
//
//   - CoVisitation: products interacted with by the same users, ranked by the
//     number of users shared (behavioral signal).
//   - PriceProximity: products in the same cluster, ranked by absolute price
//     difference (content signal).
//
// Both recommenders are pure functions over explicit inputs. They hold no
// state between calls, so a single instance may be reused across runs and
// goroutines.
//
// # Ordering
//
// Output lists are deterministic. Equal scores keep the order in which the
// partner was first seen in the input, and every list is truncated to the
// configured maximum and never contains its own source product.
package algorithms

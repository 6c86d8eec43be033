// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package recommend implements the offline product clustering and
// recommendation pipeline for the showroom catalog.
//
// # Architecture
//
// A run recomputes every output from scratch:
//
//	products -> Preparer -> FeatureMatrix -> Clusterer -> cluster labels
//	         -> ResultSink.UpdateClusterAssignments
//	         -> PriceProximity -> ResultSink.ReplaceRecommendations("clustering-based")
//	interactions -> CoVisitation -> ResultSink.ReplaceRecommendations("co-occurrence")
//
// The Preparer cleans raw attributes (median imputation, "Unknown" category
// fallback), log-transforms the configured features, standardizes numeric
// columns, one-hot encodes categorical ones and multiplies every column by
// the weight of the feature it came from.
//
// The Clusterer builds a hierarchy with the nearest-neighbour-chain algorithm
// and cuts it either into a fixed number of clusters or at a distance
// threshold.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	pipeline, err := recommend.NewPipeline(cfg, db, db, logger)
//	if err != nil {
//	    return err
//	}
//	report, err := pipeline.Run(ctx, recommend.TriggerManual)
//
// # Thread Safety
//
// Only one run executes at a time. A run started while another is in
// progress fails fast with ErrRunInProgress. Status may be read concurrently.
package recommend

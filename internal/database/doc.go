// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

/*
Package database provides the DuckDB store behind the recommendation pipeline.

DB implements both recommend.DataSource and recommend.ResultSink:

  - GetProducts and GetInteractions feed a run
  - UpdateClusterAssignments writes cluster labels back to products
  - ReplaceRecommendations swaps every stored set of one strategy

It also backs the HTTP API with ingestion (InsertProducts,
InsertInteractions) and lookups (GetProduct, GetRecommendations, GetStats).

# Identity

Product and user ids are 24-character hex ObjectIDs issued by the showroom
backend. Writes skip records whose id fails validation and log them at warn
level; skipped records are counted in the returned result.

# Transactions

Cluster updates stage assignments in a temporary table and apply them with a
single UPDATE ... FROM, so matched and modified counts come from the same
snapshot. Recommendation replacement runs DELETE and all INSERTs in one
transaction; a failure leaves the previous sets in place.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()
	db.SetProductStatuses(cfg.Pipeline.Source.Statuses)
	db.SetInteractionWindow(cfg.Pipeline.Source.InteractionWindow)

	pipeline, err := recommend.NewPipeline(rc, db, db, logger)
*/
package database

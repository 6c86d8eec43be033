// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

// Package query builds parameterized WHERE clauses for the database package.
//
//	where, args := query.NewFilter().
//	    In(query.ColStatus, []string{"Tersedia", "Dipesan"}).
//	    Where()
//	// where: "WHERE status IN (?, ?)"
//	// args:  ["Tersedia", "Dipesan"]
//
// Column names are interpolated into the SQL text, so callers pass the Col
// constants only. Values are always bound. An empty filter renders as "",
// leaving the statement unfiltered.
package query

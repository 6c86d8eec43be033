// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package query

import (
	"strings"
	"time"
)

// Filter accumulates AND-ed conditions with bound arguments.
//
//	f := query.NewFilter().In(query.ColStatus, []string{"Tersedia"})
//	where, args := f.Where()
//	// WHERE status IN (?)
type Filter struct {
	conds []string
	args  []interface{}
}

// Columns that filters are built on. Only these are interpolated into SQL.
const (
	ColProductID       = "product_id"
	ColStatus          = "status"
	ColStrategyType    = "strategy_type"
	ColInteractionType = "interaction_type"
	ColTimestamp       = "timestamp"
)

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds "column = ?".
func (f *Filter) Eq(column string, value interface{}) *Filter {
	f.conds = append(f.conds, column+" = ?")
	f.args = append(f.args, value)
	return f
}

// EqIf adds "column = ?" only when value is non-empty.
func (f *Filter) EqIf(column, value string) *Filter {
	if value == "" {
		return f
	}
	return f.Eq(column, value)
}

// In adds "column IN (?, ...)". An empty list adds nothing, so it never
// filters everything out.
func (f *Filter) In(column string, values []string) *Filter {
	if len(values) == 0 {
		return f
	}
	var b strings.Builder
	b.WriteString(column)
	b.WriteString(" IN (")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
		f.args = append(f.args, v)
	}
	b.WriteByte(')')
	f.conds = append(f.conds, b.String())
	return f
}

// Since adds "column >= ?" when t is non-zero.
func (f *Filter) Since(column string, t time.Time) *Filter {
	if t.IsZero() {
		return f
	}
	f.conds = append(f.conds, column+" >= ?")
	f.args = append(f.args, t)
	return f
}

// Len returns the number of conditions.
func (f *Filter) Len() int {
	return len(f.conds)
}

// Where renders "WHERE a AND b" with its arguments, or "" and nil when the
// filter is empty.
func (f *Filter) Where() (string, []interface{}) {
	if len(f.conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(f.conds, " AND "), f.args
}

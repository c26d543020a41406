/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import "strings"

// Query is a parsed JQL query: an optional where clause and an optional
// order by.
type Query struct {
	Where   Clause
	OrderBy []SearchSort
}

type SearchSort struct {
	Field string
	Order string
}

func (s SearchSort) String() string {
	if s.Order == "" {
		return quote(s.Field)
	}
	return quote(s.Field) + " " + strings.ToUpper(s.Order)
}

func (q *Query) String() string {
	var s string
	if q.Where != nil {
		s = q.Where.String()
	}
	if len(q.OrderBy) > 0 {
		sorts := make([]string, 0, len(q.OrderBy))
		for _, sort := range q.OrderBy {
			sorts = append(sorts, sort.String())
		}
		if s != "" {
			s += " "
		}
		s += "ORDER BY " + strings.Join(sorts, ", ")
	}
	return s
}

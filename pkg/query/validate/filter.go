/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

var filterFieldNames = []string{"filter", "request", "savedFilter", "searchRequest"}

func isFilterField(name string) bool {
	for _, n := range filterFieldNames {
		if catalog.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// FilterValidator resolves saved filters among those the searcher can see
// and rejects references that lead back to a filter already on the path,
// including the filter being validated.
type FilterValidator struct {
	services *Services
}

func (v *FilterValidator) Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	values := Values(c.Operand)
	if len(values) == 0 {
		return messages
	}

	visible, err := v.services.visibleFilters(ctx, user)
	if err != nil {
		v.services.lookupFailed(messages, err, c.Field, values[0].Value())
		return messages
	}
	all, err := v.services.Catalog.SavedFilters(ctx)
	if err != nil {
		v.services.lookupFailed(messages, err, c.Field, values[0].Value())
		return messages
	}

	d := cycleDetector{filters: all, path: make(map[int64]bool)}
	if id, ok := filterIDFrom(ctx); ok {
		d.path[id] = true
	}

	for _, l := range values {
		found := catalog.Find(visible, l.Value(), l.IsInt)
		if len(found) == 0 {
			notFound(messages, c.Field, l)
			continue
		}
		for _, f := range found {
			if d.cyclic(f) {
				messages.AddError(KeyFilterCyclical, f.Name)
			}
		}
	}
	return messages
}

type cycleDetector struct {
	filters []catalog.SavedFilter
	path    map[int64]bool
}

// cyclic reports whether following f's filter references reaches a filter
// already on the path.
func (d *cycleDetector) cyclic(f catalog.SavedFilter) bool {
	if d.path[f.ID] {
		return true
	}
	if f.Query == nil || f.Query.Where == nil {
		return false
	}

	d.path[f.ID] = true
	defer delete(d.path, f.ID)

	found := false
	clause.Inspect(f.Query.Where, func(c clause.Clause) bool {
		if found {
			return false
		}
		t, ok := c.(*clause.TerminalClause)
		if !ok || !isFilterField(t.Field) {
			return true
		}
		for _, l := range Values(t.Operand) {
			for _, ref := range catalog.Find(d.filters, l.Value(), l.IsInt) {
				if d.cyclic(ref) {
					found = true
					return false
				}
			}
		}
		return true
	})
	return found
}

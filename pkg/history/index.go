/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"context"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/pkg/errors"
)

var ErrUnavailable = errors.New("history index unavailable")

// Index is an inverted index over field change history: for each field,
// the set of values the field has ever been changed from or to.
type Index interface {
	// ValueExisted reports whether value ever appeared in the change
	// history of field. Values compare case-insensitively.
	ValueExisted(ctx context.Context, field, value string) (bool, error)
}

// Fields are the fields with recorded change history, in their canonical
// spelling.
var Fields = []string{"status", "assignee", "reporter", "priority", "resolution", "fixVersion"}

// CanonicalField maps any spelling of a history field to its canonical
// form.
func CanonicalField(field string) (string, bool) {
	for _, f := range Fields {
		if catalog.EqualFold(f, field) {
			return f, true
		}
	}
	return "", false
}

// Values returns the distinct non-empty values a change contributes to the
// index.
func Values(c catalog.Change) []string {
	var ret []string
	if c.From != "" {
		ret = append(ret, c.From)
	}
	if c.To != "" && !catalog.EqualFold(c.To, c.From) {
		ret = append(ret, c.To)
	}
	return ret
}

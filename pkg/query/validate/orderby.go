/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"strings"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

// ValidateOrderBy checks that each sort names a visible, orderable field
// at most once and has a valid direction.
func (r *Registry) ValidateOrderBy(ctx context.Context, user *catalog.User, sorts []clause.SearchSort) *message.Set {
	messages := message.New()
	seen := make(map[string]bool)

	for _, s := range sorts {
		switch strings.ToLower(s.Order) {
		case "", "asc", "desc":
		default:
			messages.AddError(KeyOrderByInvalidSort, s.Order, s.Field)
		}

		handlers, err := r.Handlers(ctx, user, s.Field)
		if err != nil {
			r.services.lookupFailed(messages, err, s.Field, "")
			continue
		}
		if len(handlers) == 0 {
			messages.AddError(KeyOrderByNotFound, s.Field)
			continue
		}

		field := handlers[0].Field
		if !field.Orderable {
			messages.AddError(KeyOrderByNotOrdered, s.Field)
			continue
		}
		if seen[field.ID] {
			messages.AddError(KeyOrderByDuplicate, s.Field)
			continue
		}
		seen[field.ID] = true
	}
	return messages
}

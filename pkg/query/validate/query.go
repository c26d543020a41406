/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"time"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/rs/zerolog"
)

// Options for a single validation. FilterID is the saved filter whose
// query is being validated, if any.
type Options struct {
	FilterID int64
}

// Observer is told about every completed validation.
type Observer interface {
	ObserveValidation(messages *message.Set, elapsed time.Duration)
}

type QueryValidator struct {
	registry *Registry
	log      zerolog.Logger
	observer Observer
}

type ValidatorOption func(*QueryValidator)

func WithObserver(o Observer) ValidatorOption {
	return func(v *QueryValidator) {
		v.observer = o
	}
}

func NewQueryValidator(registry *Registry, log zerolog.Logger, opts ...ValidatorOption) *QueryValidator {
	v := &QueryValidator{registry: registry, log: log}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *QueryValidator) Registry() *Registry {
	return v.registry
}

// Validate checks the where clause and order by of q for user. A nil user
// validates as the anonymous searcher.
func (v *QueryValidator) Validate(ctx context.Context, user *catalog.User, q *clause.Query, opts Options) *message.Set {
	start := time.Now()
	if opts.FilterID != 0 {
		ctx = WithFilterID(ctx, opts.FilterID)
	}

	messages := message.New()
	if q.Where != nil {
		visitor := NewValidatorVisitor(ctx, v.registry, user)
		clause.Walk(visitor, q.Where)
		messages.AddSet(visitor.Messages())
	}
	messages.AddSet(v.registry.ValidateOrderBy(ctx, user, q.OrderBy))

	elapsed := time.Since(start)
	searcher := "anonymous"
	if user != nil {
		searcher = user.Name
	}
	v.log.Debug().
		Str("query", q.String()).
		Str("user", searcher).
		Dur("elapsed", elapsed).
		Object("messages", messages).
		Msg("validated query")

	if v.observer != nil {
		v.observer.ObserveValidation(messages, elapsed)
	}
	return messages
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/rs/zerolog"
)

// Services are the collaborators validators consult.
type Services struct {
	Catalog     catalog.Catalog
	Permissions *catalog.Permissions
	History     history.Index
	Log         zerolog.Logger
}

// ClauseValidator checks one terminal clause for a searcher. A nil user is
// the anonymous searcher.
type ClauseValidator interface {
	Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set
}

type ClauseValidatorFunc func(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set

func (f ClauseValidatorFunc) Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	return f(ctx, user, c)
}

// CompositeValidator runs its validators in order and stops after the
// first one that reports an error. Warnings do not stop it.
type CompositeValidator []ClauseValidator

func Compose(validators ...ClauseValidator) CompositeValidator {
	return CompositeValidator(validators)
}

func (cv CompositeValidator) Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, v := range cv {
		messages.AddSet(v.Validate(ctx, user, c))
		if messages.HasAnyErrors() {
			break
		}
	}
	return messages
}

// SupportedOperatorsValidator rejects operators outside its set.
type SupportedOperatorsValidator struct {
	Operators clause.OperatorSet
}

func (v SupportedOperatorsValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	if !v.Operators.Contains(c.Operator) {
		messages.AddError(KeyOperatorNotSupported, c.Operator.String(), c.Field)
	}
	return messages
}

// lookupFailed records an infrastructure failure while resolving value.
func (s *Services) lookupFailed(messages *message.Set, err error, field, value string) {
	s.Log.Error().Err(err).Str("field", field).Str("value", value).Msg("lookup failed during validation")
	messages.AddErrorWithReason(message.ServerError, KeyLookupFailed, field, value)
}

type filterIDKey struct{}

// WithFilterID marks ctx as validating the saved filter with the given id,
// so references back to it are reported as cycles.
func WithFilterID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, filterIDKey{}, id)
}

func filterIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(filterIDKey{}).(int64)
	return id, ok && id != 0
}

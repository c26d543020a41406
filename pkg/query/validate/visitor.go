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

// ValidatorVisitor walks a where clause and collects the messages of every
// leaf. It carries the context of the validation since clause.Visitor has
// no room for one.
type ValidatorVisitor struct {
	ctx      context.Context
	registry *Registry
	user     *catalog.User
	messages *message.Set
}

func NewValidatorVisitor(ctx context.Context, registry *Registry, user *catalog.User) *ValidatorVisitor {
	return &ValidatorVisitor{ctx: ctx, registry: registry, user: user, messages: message.New()}
}

func (v *ValidatorVisitor) Visit(c clause.Clause) clause.Visitor {
	switch n := c.(type) {
	case nil:
		return nil
	case *clause.TerminalClause:
		v.messages.AddSet(v.registry.ValidateTerminal(v.ctx, v.user, n))
		return nil
	case *clause.WasClause:
		v.messages.AddSet(v.registry.was.Validate(v.ctx, v.user, n))
		return nil
	case *clause.ChangedClause:
		v.messages.AddSet(v.registry.changed.Validate(v.ctx, v.user, n))
		return nil
	}
	return v
}

func (v *ValidatorVisitor) Messages() *message.Set {
	return v.messages
}

// ValidateTerminal validates one terminal clause: the field must resolve,
// the operator must fit the operand, functions must be valid, and then
// every handler for the name gets its say.
func (r *Registry) ValidateTerminal(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()

	handlers, err := r.Handlers(ctx, user, c.Field)
	if err != nil {
		r.services.lookupFailed(messages, err, c.Field, "")
		return messages
	}
	if len(handlers) == 0 {
		messages.AddError(KeyNoSuchField, c.Field)
		return messages
	}

	messages.AddSet(r.usage.Check(c.Field, c.Operator, c.Operand))
	if messages.HasAnyErrors() {
		return messages
	}
	// With several fields behind one name, the operand only has to suit one.
	operand := validateOperand(ctx, r.functions, user, handlers[0].Field, c.Field, c.Operand)
	for _, h := range handlers[1:] {
		if !operand.HasAnyErrors() {
			break
		}
		if alt := validateOperand(ctx, r.functions, user, h.Field, c.Field, c.Operand); !alt.HasAnyErrors() {
			operand = alt
		}
	}
	messages.AddSet(operand)
	if messages.HasAnyErrors() {
		return messages
	}

	for _, h := range handlers {
		messages.AddSet(h.Validator.Validate(ctx, user, c))
	}
	return messages
}

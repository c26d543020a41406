/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"slices"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

var (
	wasPredicates     = clause.OperatorSet{clause.OpAfter, clause.OpBefore, clause.OpOn, clause.OpDuring, clause.OpBy}
	changedPredicates = clause.PredicateOperators
	pointPredicates   = clause.OperatorSet{clause.OpAfter, clause.OpBefore, clause.OpOn}
	valuePredicates   = clause.OperatorSet{clause.OpFrom, clause.OpTo}

	dateField = &Field{ID: "date", DataType: TypeDate}
	userField = &Field{ID: "user", DataType: TypeUser}
)

// historyHandler resolves the field of a was or changed clause and checks
// it keeps history.
func (r *Registry) historyHandler(ctx context.Context, user *catalog.User, name string, messages *message.Set) *Handler {
	handlers, err := r.Handlers(ctx, user, name)
	if err != nil {
		r.services.lookupFailed(messages, err, name, "")
		return nil
	}
	if len(handlers) == 0 {
		messages.AddError(KeyNoSuchField, name)
		return nil
	}
	if !handlers[0].Field.History {
		messages.AddError(KeyHistoryNotSupported, name)
		return nil
	}
	return handlers[0]
}

// checkHistoricValues requires every literal of operand to be a current
// value of the field or one it held at some point.
func (r *Registry) checkHistoricValues(ctx context.Context, user *catalog.User, h *Handler, name string, operand clause.Operand, messages *message.Set) {
	for _, l := range Values(operand) {
		current := clause.Terminal(name, clause.OpEquals, clause.SingleValueOperand{Str: l.Str, Int: l.Int, IsInt: l.IsInt})
		found := h.Validator.Validate(ctx, user, current)
		if !found.HasAnyErrors() {
			continue
		}
		if slices.Contains(found.Reasons(), message.ServerError) {
			messages.AddSet(found)
			return
		}

		existed, err := r.valueExisted(ctx, name, l.Value())
		if err != nil {
			r.services.lookupFailed(messages, err, name, l.Value())
			return
		}
		if !existed {
			messages.AddError(KeyHistoryValueNotFound, l.Value(), name)
		}
	}
}

func (r *Registry) valueExisted(ctx context.Context, name, value string) (bool, error) {
	if r.services.History == nil {
		return false, nil
	}
	field, ok := history.CanonicalField(name)
	if !ok {
		return false, nil
	}
	return r.services.History.ValueExisted(ctx, field, value)
}

// WasClauseValidator validates "field was value" clauses.
type WasClauseValidator struct {
	registry *Registry
}

func (v *WasClauseValidator) Validate(ctx context.Context, user *catalog.User, c *clause.WasClause) *message.Set {
	r := v.registry
	messages := message.New()

	h := r.historyHandler(ctx, user, c.Field, messages)
	if h == nil {
		return messages
	}
	if !clause.WasOperators.Contains(c.Operator) {
		messages.AddError(KeyOperatorNotSupported, c.Operator.String(), c.Field)
		return messages
	}

	messages.AddSet(r.usage.Check(c.Field, c.Operator, c.Operand))
	if messages.HasAnyErrors() {
		return messages
	}
	messages.AddSet(validateOperand(ctx, r.functions, user, h.Field, c.Field, c.Operand))
	if messages.HasAnyErrors() {
		return messages
	}

	r.checkHistoricValues(ctx, user, h, c.Field, c.Operand, messages)
	messages.AddSet(r.predicates().Validate(ctx, user, h, c.Field, wasPredicates, c.Predicate))
	return messages
}

// ChangedClauseValidator validates "field changed" clauses.
type ChangedClauseValidator struct {
	registry *Registry
}

func (v *ChangedClauseValidator) Validate(ctx context.Context, user *catalog.User, c *clause.ChangedClause) *message.Set {
	r := v.registry
	messages := message.New()

	h := r.historyHandler(ctx, user, c.Field, messages)
	if h == nil {
		return messages
	}
	if c.Operator != clause.OpChanged {
		messages.AddError(KeyOperatorNotSupported, c.Operator.String(), c.Field)
		return messages
	}

	messages.AddSet(r.predicates().Validate(ctx, user, h, c.Field, changedPredicates, c.Predicate))
	return messages
}

// HistoryPredicateValidator checks the predicates of a history clause.
type HistoryPredicateValidator struct {
	registry *Registry
}

func (r *Registry) predicates() *HistoryPredicateValidator {
	return &HistoryPredicateValidator{registry: r}
}

func (v *HistoryPredicateValidator) Validate(ctx context.Context, user *catalog.User, h *Handler, name string, allowed clause.OperatorSet, p clause.HistoryPredicate) *message.Set {
	messages := message.New()
	if p == nil {
		return messages
	}

	for _, tp := range clause.FlattenPredicate(p) {
		messages.AddSet(v.validateTerminal(ctx, user, h, name, allowed, tp))
	}
	return messages
}

func (v *HistoryPredicateValidator) validateTerminal(ctx context.Context, user *catalog.User, h *Handler, name string, allowed clause.OperatorSet, p *clause.TerminalHistoryPredicate) *message.Set {
	r := v.registry
	messages := message.New()
	op := p.Operator.String()

	if !allowed.Contains(p.Operator) {
		messages.AddError(KeyPredicateNotSupported, op, name)
		return messages
	}

	list, isList := p.Operand.(clause.MultiValueOperand)
	_, isEmpty := p.Operand.(clause.EmptyOperand)

	switch {
	case pointPredicates.Contains(p.Operator):
		if isList || isEmpty || v.isListFunction(p.Operand) {
			messages.AddError(KeyPredicateSingleValue, op, name)
			return messages
		}
		v.checkDates(ctx, user, name, p.Operand, messages)

	case p.Operator == clause.OpDuring:
		if !isList || len(list.Values) != 2 {
			messages.AddError(KeyDuringTwoValues, name)
			return messages
		}
		v.checkDates(ctx, user, name, p.Operand, messages)

	case p.Operator == clause.OpBy:
		for _, fn := range Functions(p.Operand) {
			messages.AddSet(r.functions.Validate(ctx, user, userField, op, fn))
		}
		messages.AddSet((&UserValidator{services: r.services}).Validate(ctx, user, clause.Terminal(op, clause.OpEquals, p.Operand)))

	case valuePredicates.Contains(p.Operator):
		if isList || v.isListFunction(p.Operand) {
			messages.AddError(KeyPredicateSingleValue, op, name)
			return messages
		}
		for _, fn := range Functions(p.Operand) {
			messages.AddSet(r.functions.Validate(ctx, user, h.Field, name, fn))
		}
		r.checkHistoricValues(ctx, user, h, name, p.Operand, messages)
	}
	return messages
}

func (v *HistoryPredicateValidator) isListFunction(o clause.Operand) bool {
	fn, ok := o.(clause.FunctionOperand)
	if !ok {
		return false
	}
	f, ok := v.registry.functions.Lookup(fn.Name)
	return ok && f.List
}

func (v *HistoryPredicateValidator) checkDates(ctx context.Context, user *catalog.User, name string, operand clause.Operand, messages *message.Set) {
	for _, fn := range Functions(operand) {
		messages.AddSet(v.registry.functions.Validate(ctx, user, dateField, name, fn))
	}
	for _, l := range Values(operand) {
		if !l.IsInt && !IsDate(l.Str, false) {
			messages.AddError(KeyDateInvalid, l.Value(), name)
		}
	}
}

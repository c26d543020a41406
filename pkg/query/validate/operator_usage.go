/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

// emptyOperators may take a bare EMPTY. Inside a list EMPTY goes with any
// list operator.
var emptyOperators = clause.OperatorSet{clause.OpEquals, clause.OpNotEquals, clause.OpIs, clause.OpIsNot, clause.OpWas, clause.OpWasNot}

// OperatorUsage checks that an operator and its operand fit together,
// independent of the field: is requires EMPTY, list operators require a
// list, and so on. Functions are looked up to tell list functions from
// single valued ones; unknown functions are left to the operand step.
type OperatorUsage struct {
	functions *FunctionRegistry
}

func NewOperatorUsage(functions *FunctionRegistry) *OperatorUsage {
	return &OperatorUsage{functions: functions}
}

// Check validates op against operand for the named field.
func (u *OperatorUsage) Check(field string, op clause.Operator, operand clause.Operand) *message.Set {
	messages := message.New()
	opName := op.String()

	switch o := operand.(type) {
	case clause.EmptyOperand:
		if !emptyOperators.Contains(op) {
			messages.AddError(KeyEmptyNotSupported, opName, field)
		}
		return messages

	case clause.MultiValueOperand:
		if !op.IsList() {
			messages.AddError(KeySingleRequiresOne, opName, field)
			return messages
		}
		if len(o.Values) == 0 {
			messages.AddError(KeyListEmpty, opName, field)
		}
		return messages
	}

	if clause.EmptyOnlyOperators.Contains(op) {
		messages.AddError(KeyIsRequiresEmpty, opName, field)
		return messages
	}

	if fn, isFunc := operand.(clause.FunctionOperand); isFunc {
		f, ok := u.functions.Lookup(fn.Name)
		if !ok {
			return messages
		}
		if op.IsList() && !f.List {
			messages.AddError(KeyListRequiresList, opName, field)
		} else if !op.IsList() && f.List {
			messages.AddError(KeySingleRequiresOne, opName, field)
		}
		return messages
	}

	if op.IsList() {
		messages.AddError(KeyListRequiresList, opName, field)
	}
	return messages
}

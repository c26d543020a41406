/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import "strings"

// HistoryPredicate qualifies a was or changed clause, e.g.
// "after startOfWeek() by fred".
type HistoryPredicate interface {
	DisplayString() string
}

type (
	TerminalHistoryPredicate struct {
		Operator Operator
		Operand  Operand
	}

	AndHistoryPredicate struct {
		Predicates []HistoryPredicate
	}
)

func Predicate(op Operator, operand Operand) *TerminalHistoryPredicate {
	return &TerminalHistoryPredicate{Operator: op, Operand: operand}
}

func (p *TerminalHistoryPredicate) DisplayString() string {
	return p.Operator.String() + " " + displayOperand(p.Operand)
}

func (p *AndHistoryPredicate) DisplayString() string {
	parts := make([]string, 0, len(p.Predicates))
	for _, sub := range p.Predicates {
		parts = append(parts, sub.DisplayString())
	}
	return strings.Join(parts, " ")
}

// FlattenPredicate returns the terminal predicates of p in order.
func FlattenPredicate(p HistoryPredicate) []*TerminalHistoryPredicate {
	switch t := p.(type) {
	case *TerminalHistoryPredicate:
		return []*TerminalHistoryPredicate{t}
	case *AndHistoryPredicate:
		var ret []*TerminalHistoryPredicate
		for _, sub := range t.Predicates {
			ret = append(ret, FlattenPredicate(sub)...)
		}
		return ret
	}
	return nil
}

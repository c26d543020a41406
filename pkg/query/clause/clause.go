/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"strings"
)

// Clause is a node in a parsed query. Terminal, was and changed clauses are
// leaves; the boolean clauses hold further clauses.
type Clause interface {
	Name() string
	String() string
}

type (
	TerminalClause struct {
		Field    string
		Operator Operator
		Operand  Operand
	}

	AndClause struct {
		Clauses []Clause
	}

	OrClause struct {
		Clauses []Clause
	}

	NotClause struct {
		SubClause Clause
	}

	WasClause struct {
		Field     string
		Operator  Operator
		Operand   Operand
		Predicate HistoryPredicate
	}

	ChangedClause struct {
		Field     string
		Operator  Operator
		Predicate HistoryPredicate
	}
)

func Terminal(field string, op Operator, operand Operand) *TerminalClause {
	return &TerminalClause{Field: field, Operator: op, Operand: operand}
}

func And(clauses ...Clause) *AndClause {
	return &AndClause{Clauses: clauses}
}

func Or(clauses ...Clause) *OrClause {
	return &OrClause{Clauses: clauses}
}

func Not(sub Clause) *NotClause {
	return &NotClause{SubClause: sub}
}

//-- TerminalClause

func (t *TerminalClause) Name() string {
	return t.Field
}

func (t *TerminalClause) String() string {
	return quote(t.Field) + " " + t.Operator.String() + " " + displayOperand(t.Operand)
}

//-- AndClause

func (a *AndClause) Name() string {
	return "AND"
}

func (a *AndClause) String() string {
	return joinClauses(a.Clauses, " AND ", func(c Clause) bool {
		_, isOr := c.(*OrClause)
		return isOr
	})
}

//-- OrClause

func (o *OrClause) Name() string {
	return "OR"
}

func (o *OrClause) String() string {
	return joinClauses(o.Clauses, " OR ", func(Clause) bool { return false })
}

//-- NotClause

func (n *NotClause) Name() string {
	return "NOT"
}

func (n *NotClause) String() string {
	switch n.SubClause.(type) {
	case *AndClause, *OrClause:
		return "NOT (" + n.SubClause.String() + ")"
	}
	return "NOT " + n.SubClause.String()
}

//-- WasClause

func (w *WasClause) Name() string {
	return w.Field
}

func (w *WasClause) String() string {
	s := quote(w.Field) + " " + w.Operator.String() + " " + displayOperand(w.Operand)
	if w.Predicate != nil {
		s += " " + w.Predicate.DisplayString()
	}
	return s
}

//-- ChangedClause

func (c *ChangedClause) Name() string {
	return c.Field
}

func (c *ChangedClause) String() string {
	s := quote(c.Field) + " " + c.Operator.String()
	if c.Predicate != nil {
		s += " " + c.Predicate.DisplayString()
	}
	return s
}

func displayOperand(o Operand) string {
	if o == nil {
		return ""
	}
	return o.DisplayString()
}

func joinClauses(clauses []Clause, sep string, wrap func(Clause) bool) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if wrap(c) {
			parts = append(parts, "("+c.String()+")")
		} else {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, sep)
}

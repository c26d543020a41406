/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

// A Visitor's Visit method is invoked for each clause encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// the clause with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(c Clause) (w Visitor)
}

func Walk(v Visitor, c Clause) {
	if v = v.Visit(c); v == nil {
		return
	}

	switch n := c.(type) {
	case *AndClause:
		for _, sub := range n.Clauses {
			Walk(v, sub)
		}

	case *OrClause:
		for _, sub := range n.Clauses {
			Walk(v, sub)
		}

	case *NotClause:
		Walk(v, n.SubClause)

	case *TerminalClause, *WasClause, *ChangedClause:
		// Skip, leaf nodes

	default:
		panic("Unexpected Clause passed to Walk")
	}

	v.Visit(nil)
}

type inspector func(Clause) bool

func (f inspector) Visit(c Clause) Visitor {
	if f(c) {
		return f
	}
	return nil
}

// Inspect traverses the clause tree in depth-first order, calling f for
// each clause and then f(nil) once the children have been visited. If f
// returns false the children of that clause are skipped.
func Inspect(c Clause, f func(Clause) bool) {
	Walk(inspector(f), c)
}

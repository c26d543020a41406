/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClauseString(t *testing.T) {
	tests := []struct {
		clause Clause
		want   string
	}{
		{Terminal("project", OpEquals, StringOperand("TEST")), "project = TEST"},
		{Terminal("summary", OpLike, StringOperand("hello world")), `summary ~ "hello world"`},
		{Terminal("votes", OpGreaterThan, IntOperand(3)), "votes > 3"},
		{Terminal("assignee", OpIs, EmptyOperand{}), "assignee is EMPTY"},
		{Terminal("status", OpIn, Strings("Open", "and")), `status in (Open, "and")`},
		{Terminal("fixVersion", OpIn, Function("releasedVersions", "TEST")), "fixVersion in releasedVersions(TEST)"},
		{Terminal("cf[10001]", OpEquals, StringOperand("x")), `"cf[10001]" = x`},
		{
			And(Terminal("a", OpEquals, StringOperand("1")), Or(Terminal("b", OpEquals, StringOperand("2")), Terminal("c", OpEquals, StringOperand("3")))),
			"a = 1 AND (b = 2 OR c = 3)",
		},
		{
			Or(And(Terminal("a", OpEquals, StringOperand("1")), Terminal("b", OpEquals, StringOperand("2"))), Terminal("c", OpEquals, StringOperand("3"))),
			"a = 1 AND b = 2 OR c = 3",
		},
		{Not(Or(Terminal("a", OpEquals, StringOperand("1")), Terminal("b", OpEquals, StringOperand("2")))), "NOT (a = 1 OR b = 2)"},
		{
			&WasClause{Field: "status", Operator: OpWas, Operand: StringOperand("Open"), Predicate: &AndHistoryPredicate{Predicates: []HistoryPredicate{
				Predicate(OpBy, StringOperand("fred")),
				Predicate(OpAfter, StringOperand("2024-01-01")),
			}}},
			"status was Open by fred after 2024-01-01",
		},
		{&ChangedClause{Field: "assignee", Operator: OpChanged}, "assignee changed"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.clause.String())
		})
	}
}

func TestQueryString(t *testing.T) {
	q := &Query{
		Where:   Terminal("project", OpEquals, StringOperand("TEST")),
		OrderBy: []SearchSort{{Field: "created", Order: "desc"}, {Field: "key"}},
	}
	assert.Equal(t, "project = TEST ORDER BY created DESC, key", q.String())

	q.Where = nil
	assert.Equal(t, "ORDER BY created DESC, key", q.String())
}

func TestWalkOrder(t *testing.T) {
	tree := And(
		Terminal("a", OpEquals, StringOperand("1")),
		Not(Terminal("b", OpEquals, StringOperand("2"))),
		Or(Terminal("c", OpEquals, StringOperand("3"))),
	)

	var names []string
	Inspect(tree, func(c Clause) bool {
		if c == nil {
			names = append(names, "<nil>")
			return false
		}
		names = append(names, c.Name())
		return true
	})

	assert.Equal(t, []string{
		"AND", "a", "<nil>", "NOT", "b", "<nil>", "<nil>", "OR", "c", "<nil>", "<nil>", "<nil>",
	}, names)
}

func TestWalkPrune(t *testing.T) {
	tree := And(Not(Terminal("hidden", OpEquals, StringOperand("1"))), Terminal("seen", OpEquals, StringOperand("2")))

	var names []string
	Inspect(tree, func(c Clause) bool {
		if c == nil {
			return false
		}
		names = append(names, c.Name())
		_, isNot := c.(*NotClause)
		return !isNot
	})

	assert.Equal(t, []string{"AND", "NOT", "seen"}, names)
}

func TestFlattenPredicate(t *testing.T) {
	by := Predicate(OpBy, StringOperand("fred"))
	after := Predicate(OpAfter, StringOperand("2024-01-01"))
	nested := &AndHistoryPredicate{Predicates: []HistoryPredicate{by, &AndHistoryPredicate{Predicates: []HistoryPredicate{after}}}}

	assert.Equal(t, []*TerminalHistoryPredicate{by, after}, FlattenPredicate(nested))
	assert.Nil(t, FlattenPredicate(nil))
}

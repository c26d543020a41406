/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"strings"
)

type Operator int

const (
	OpInvalid Operator = iota

	OpEquals
	OpNotEquals
	OpLike
	OpNotLike
	OpGreaterThan
	OpGreaterThanEquals
	OpLessThan
	OpLessThanEquals
	OpIn
	OpNotIn
	OpIs
	OpIsNot

	// History
	OpWas
	OpWasNot
	OpWasIn
	OpWasNotIn
	OpChanged

	// History predicates
	OpAfter
	OpBefore
	OpOn
	OpDuring
	OpBy
	OpFrom
	OpTo
)

var operatorNames = map[Operator]string{
	OpEquals:            "=",
	OpNotEquals:         "!=",
	OpLike:              "~",
	OpNotLike:           "!~",
	OpGreaterThan:       ">",
	OpGreaterThanEquals: ">=",
	OpLessThan:          "<",
	OpLessThanEquals:    "<=",
	OpIn:                "in",
	OpNotIn:             "not in",
	OpIs:                "is",
	OpIsNot:             "is not",
	OpWas:               "was",
	OpWasNot:            "was not",
	OpWasIn:             "was in",
	OpWasNotIn:          "was not in",
	OpChanged:           "changed",
	OpAfter:             "after",
	OpBefore:            "before",
	OpOn:                "on",
	OpDuring:            "during",
	OpBy:                "by",
	OpFrom:              "from",
	OpTo:                "to",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "invalid"
}

// ParseOperator maps the display form of an operator back to an Operator.
// Matching ignores case and collapses runs of whitespace, so "NOT  IN" is
// the same operator as "not in".
func ParseOperator(s string) (Operator, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(s), " "))
	for op, name := range operatorNames {
		if name == normalized {
			return op, true
		}
	}
	return OpInvalid, false
}

// IsList reports whether the operator expects a list operand.
func (o Operator) IsList() bool {
	return ListOperators.Contains(o)
}

type OperatorSet []Operator

var (
	EqualityOperators          = OperatorSet{OpEquals, OpNotEquals, OpIn, OpNotIn}
	EmptyOnlyOperators         = OperatorSet{OpIs, OpIsNot}
	EqualityOperatorsWithEmpty = Union(EqualityOperators, EmptyOnlyOperators)
	RelationalOperators        = OperatorSet{OpLessThan, OpLessThanEquals, OpGreaterThan, OpGreaterThanEquals}
	TextOperators              = OperatorSet{OpLike, OpNotLike, OpIs, OpIsNot}
	ListOperators              = OperatorSet{OpIn, OpNotIn, OpWasIn, OpWasNotIn}
	WasOperators               = OperatorSet{OpWas, OpWasNot, OpWasIn, OpWasNotIn}
	HistoryOperators           = Union(WasOperators, OperatorSet{OpChanged})
	PredicateOperators         = OperatorSet{OpAfter, OpBefore, OpOn, OpDuring, OpBy, OpFrom, OpTo}
)

// Union returns the operators present in any of the sets, in first-seen
// order, without duplicates.
func Union(sets ...OperatorSet) OperatorSet {
	var ret OperatorSet
	seen := make(map[Operator]bool)
	for _, set := range sets {
		for _, op := range set {
			if !seen[op] {
				seen[op] = true
				ret = append(ret, op)
			}
		}
	}
	return ret
}

func (s OperatorSet) Contains(op Operator) bool {
	for _, o := range s {
		if o == op {
			return true
		}
	}
	return false
}

func (s OperatorSet) String() string {
	names := make([]string, 0, len(s))
	for _, o := range s {
		names = append(names, "'"+o.String()+"'")
	}
	return strings.Join(names, ", ")
}

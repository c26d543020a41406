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

func TestParseOperator(t *testing.T) {
	tests := []struct {
		input string
		want  Operator
		ok    bool
	}{
		{"=", OpEquals, true},
		{"!=", OpNotEquals, true},
		{"IN", OpIn, true},
		{"not   in", OpNotIn, true},
		{" Is Not ", OpIsNot, true},
		{"WAS NOT IN", OpWasNotIn, true},
		{"changed", OpChanged, true},
		{"during", OpDuring, true},
		{"==", OpInvalid, false},
		{"", OpInvalid, false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			op, ok := ParseOperator(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, op)
		})
	}
}

func TestOperatorRoundTrip(t *testing.T) {
	for op := range operatorNames {
		parsed, ok := ParseOperator(op.String())
		assert.True(t, ok, op.String())
		assert.Equal(t, op, parsed)
	}
	assert.Equal(t, "invalid", OpInvalid.String())
}

func TestOperatorSets(t *testing.T) {
	assert.True(t, OpIn.IsList())
	assert.True(t, OpWasNotIn.IsList())
	assert.False(t, OpEquals.IsList())

	assert.Equal(t, OperatorSet{OpEquals, OpNotEquals, OpIn, OpNotIn, OpIs, OpIsNot}, EqualityOperatorsWithEmpty)
	assert.True(t, HistoryOperators.Contains(OpChanged))
	assert.False(t, TextOperators.Contains(OpEquals))

	u := Union(OperatorSet{OpLike, OpIs}, TextOperators)
	assert.Equal(t, OperatorSet{OpLike, OpIs, OpNotLike, OpIsNot}, u)
	assert.Equal(t, "'~', '!~'", OperatorSet{OpLike, OpNotLike}.String())
}

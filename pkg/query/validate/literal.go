/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"strconv"

	"github.com/dburkart/jql/pkg/query/clause"
)

// Literal is one value of an operand. Function operands produce literals
// with only Function set; value validators skip those since functions are
// validated on their own.
type Literal struct {
	Str      string
	Int      int64
	IsInt    bool
	Empty    bool
	Function string
}

func (l Literal) Value() string {
	if l.IsInt {
		return strconv.FormatInt(l.Int, 10)
	}
	return l.Str
}

// IsValue reports whether the literal is a plain string or integer.
func (l Literal) IsValue() bool {
	return !l.Empty && l.Function == ""
}

// Literals flattens an operand into its literals in order.
func Literals(o clause.Operand) []Literal {
	switch v := o.(type) {
	case clause.SingleValueOperand:
		return []Literal{{Str: v.Str, Int: v.Int, IsInt: v.IsInt}}
	case clause.EmptyOperand:
		return []Literal{{Empty: true}}
	case clause.FunctionOperand:
		return []Literal{{Function: v.Name}}
	case clause.MultiValueOperand:
		var ret []Literal
		for _, item := range v.Values {
			ret = append(ret, Literals(item)...)
		}
		return ret
	}
	return nil
}

// Values returns the plain literals of an operand.
func Values(o clause.Operand) []Literal {
	var ret []Literal
	for _, l := range Literals(o) {
		if l.IsValue() {
			ret = append(ret, l)
		}
	}
	return ret
}

// Functions returns the function operands of o, including those nested in
// a list.
func Functions(o clause.Operand) []clause.FunctionOperand {
	switch v := o.(type) {
	case clause.FunctionOperand:
		return []clause.FunctionOperand{v}
	case clause.MultiValueOperand:
		var ret []clause.FunctionOperand
		for _, item := range v.Values {
			ret = append(ret, Functions(item)...)
		}
		return ret
	}
	return nil
}

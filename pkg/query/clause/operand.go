/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"strconv"
	"strings"
	"unicode"
)

// Operand is the right hand side of a clause.
type Operand interface {
	DisplayString() string
	operand()
}

type (
	// SingleValueOperand holds either a string or an integer literal.
	SingleValueOperand struct {
		Str   string
		Int   int64
		IsInt bool
	}

	MultiValueOperand struct {
		Values []Operand
	}

	EmptyOperand struct{}

	FunctionOperand struct {
		Name string
		Args []string
	}
)

func (SingleValueOperand) operand() {}
func (MultiValueOperand) operand()  {}
func (EmptyOperand) operand()       {}
func (FunctionOperand) operand()    {}

func StringOperand(s string) SingleValueOperand {
	return SingleValueOperand{Str: s}
}

func IntOperand(i int64) SingleValueOperand {
	return SingleValueOperand{Int: i, IsInt: true}
}

// Strings is syntactic sugar for a list of string literals
func Strings(values ...string) MultiValueOperand {
	m := MultiValueOperand{}
	for _, v := range values {
		m.Values = append(m.Values, StringOperand(v))
	}
	return m
}

func Function(name string, args ...string) FunctionOperand {
	return FunctionOperand{Name: name, Args: args}
}

//-- SingleValueOperand

// Value returns the literal as a string, whatever its kind.
func (o SingleValueOperand) Value() string {
	if o.IsInt {
		return strconv.FormatInt(o.Int, 10)
	}
	return o.Str
}

func (o SingleValueOperand) DisplayString() string {
	if o.IsInt {
		return o.Value()
	}
	return quote(o.Str)
}

//-- MultiValueOperand

func (o MultiValueOperand) DisplayString() string {
	parts := make([]string, 0, len(o.Values))
	for _, v := range o.Values {
		parts = append(parts, v.DisplayString())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

//-- EmptyOperand

func (EmptyOperand) DisplayString() string {
	return "EMPTY"
}

//-- FunctionOperand

func (o FunctionOperand) DisplayString() string {
	parts := make([]string, 0, len(o.Args))
	for _, a := range o.Args {
		parts = append(parts, quote(a))
	}
	return o.Name + "(" + strings.Join(parts, ", ") + ")"
}

var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "empty": true, "null": true,
	"in": true, "is": true, "was": true, "changed": true, "order": true, "by": true,
}

func quote(s string) string {
	if s == "" || reservedWords[strings.ToLower(s)] {
		return strconv.Quote(s)
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' || r == '@') {
			return strconv.Quote(s)
		}
	}
	return s
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"reflect"
	"strings"
)

// Dumper renders a clause tree one node per line, indenting children.
type Dumper struct {
	Output string
	indent int
}

func (d *Dumper) Visit(c Clause) Visitor {
	if c == nil {
		d.indent -= 1
		return nil
	}

	level := strings.Repeat("    ", d.indent)

	var value string
	switch t := c.(type) {
	case *TerminalClause:
		value = t.String()
	case *WasClause:
		value = t.String()
	case *ChangedClause:
		value = t.String()
	case *AndClause:
		value = "AND"
	case *OrClause:
		value = "OR"
	case *NotClause:
		value = "NOT"
	}

	t := reflect.TypeOf(c)
	d.Output += level + t.Elem().Name() + "[" + value + "]" + "\n"
	d.indent += 1

	return d
}

// Dump is a convenience wrapper returning the Dumper output for c.
func Dump(c Clause) string {
	if c == nil {
		return ""
	}
	d := &Dumper{}
	Walk(d, c)
	return d.Output
}

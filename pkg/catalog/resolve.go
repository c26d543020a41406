/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"strconv"

	"golang.org/x/text/cases"
)

// Entity is anything a clause value can name, either by one of its names
// or by its id.
type Entity interface {
	EntityID() int64
	EntityNames() []string
}

func (p Project) EntityID() int64       { return p.ID }
func (p Project) EntityNames() []string { return []string{p.Key, p.Name} }

func (c ProjectCategory) EntityID() int64       { return c.ID }
func (c ProjectCategory) EntityNames() []string { return []string{c.Name} }

func (v Version) EntityID() int64       { return v.ID }
func (v Version) EntityNames() []string { return []string{v.Name} }

func (c Component) EntityID() int64       { return c.ID }
func (c Component) EntityNames() []string { return []string{c.Name} }

func (t IssueType) EntityID() int64       { return t.ID }
func (t IssueType) EntityNames() []string { return []string{t.Name} }

func (p Priority) EntityID() int64       { return p.ID }
func (p Priority) EntityNames() []string { return []string{p.Name} }

func (r Resolution) EntityID() int64       { return r.ID }
func (r Resolution) EntityNames() []string { return []string{r.Name} }

func (s Status) EntityID() int64       { return s.ID }
func (s Status) EntityNames() []string { return []string{s.Name} }

func (l SecurityLevel) EntityID() int64       { return l.ID }
func (l SecurityLevel) EntityNames() []string { return []string{l.Name} }

func (f SavedFilter) EntityID() int64       { return f.ID }
func (f SavedFilter) EntityNames() []string { return []string{f.Name} }

func (f CustomField) EntityID() int64       { return f.ID }
func (f CustomField) EntityNames() []string { return []string{f.Name} }

func (o Option) EntityID() int64       { return o.ID }
func (o Option) EntityNames() []string { return []string{o.Value} }

// Fold returns the case-folded form of s used for all name comparisons.
// Casers keep state, so one is made per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// FindByName returns the items with a name equal to name under case
// folding.
func FindByName[T Entity](items []T, name string) []T {
	folded := Fold(name)
	var ret []T
	for _, item := range items {
		for _, n := range item.EntityNames() {
			if n != "" && Fold(n) == folded {
				ret = append(ret, item)
				break
			}
		}
	}
	return ret
}

func FindByID[T Entity](items []T, id int64) []T {
	var ret []T
	for _, item := range items {
		if item.EntityID() == id {
			ret = append(ret, item)
		}
	}
	return ret
}

// Find resolves a clause literal. Integer literals are ids. A string is
// matched by name first and, when no name matches and it is numeric, by
// id.
func Find[T Entity](items []T, value string, isInt bool) []T {
	if isInt {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil
		}
		return FindByID(items, id)
	}

	if found := FindByName(items, value); len(found) > 0 {
		return found
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return FindByID(items, id)
	}
	return nil
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

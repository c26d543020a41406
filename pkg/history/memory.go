/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"context"
	"sync"

	"github.com/dburkart/jql/pkg/catalog"
)

// Memory is an Index held in process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]bool
}

func NewMemory(changes []catalog.Change) *Memory {
	m := &Memory{values: make(map[string]map[string]bool)}
	for _, c := range changes {
		m.Add(c)
	}
	return m
}

// Add records a change. Changes to fields without history support are
// ignored.
func (m *Memory) Add(c catalog.Change) {
	field, ok := CanonicalField(c.Field)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.values[field]
	if !ok {
		set = make(map[string]bool)
		m.values[field] = set
	}
	for _, v := range Values(c) {
		set[catalog.Fold(v)] = true
	}
}

func (m *Memory) ValueExisted(_ context.Context, field, value string) (bool, error) {
	field, ok := CanonicalField(field)
	if !ok {
		return false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.values[field][catalog.Fold(value)], nil
}

// Len returns the number of indexed field/value pairs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, set := range m.values {
		n += len(set)
	}
	return n
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"context"
	"testing"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalField(t *testing.T) {
	f, ok := CanonicalField("FIXVERSION")
	assert.True(t, ok)
	assert.Equal(t, "fixVersion", f)

	_, ok = CanonicalField("summary")
	assert.False(t, ok)
}

func TestValues(t *testing.T) {
	assert.Equal(t, []string{"fred"}, Values(catalog.Change{From: "", To: "fred"}))
	assert.Equal(t, []string{"Open", "Closed"}, Values(catalog.Change{From: "Open", To: "Closed"}))
	assert.Equal(t, []string{"Open"}, Values(catalog.Change{From: "Open", To: "OPEN"}))
	assert.Empty(t, Values(catalog.Change{}))
}

func TestMemoryIndex(t *testing.T) {
	snapshot, err := catalog.LoadSnapshotFile("../../test/fixtures/catalog.yaml")
	require.NoError(t, err)

	m := NewMemory(snapshot.ChangeList)
	ctx := context.Background()

	tests := []struct {
		field, value string
		want         bool
	}{
		{"status", "Reopened", true},
		{"STATUS", "reopened", true},
		{"status", "Open", true},
		{"status", "Closed", false},
		{"assignee", "oldtimer", true},
		{"assignee", "", false},
		{"priority", "blocker", true},
		{"fixversion", "0.9", true},
		{"resolution", "Fixed", true},
		{"reporter", "fred", false},
		{"summary", "anything", false},
	}

	for _, tc := range tests {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			ok, err := m.ValueExisted(ctx, tc.field, tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}

	m.Add(catalog.Change{Field: "reporter", From: "mary", To: "fred"})
	ok, err := m.ValueExisted(ctx, "reporter", "fred")
	require.NoError(t, err)
	assert.True(t, ok)

	m.Add(catalog.Change{Field: "summary", From: "a", To: "b"})
	assert.Equal(t, 11, m.Len())
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"testing"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/stretchr/testify/assert"
)

func TestStatsReport(t *testing.T) {
	r := statsReport{
		Catalog: "jql.db",
		Stats:   catalog.Stats{Users: 4, Issues: 12345, Changes: 1000000},
	}

	rows := r.Values()
	assert.Equal(t, []string{"entity", "count"}, r.Headers())
	assert.Len(t, rows, 9)
	assert.Equal(t, []string{"issues", "12,345"}, rows[5])
	assert.Equal(t, []string{"changes", "1,000,000"}, rows[8])

	r.Size, r.Modified = "4.1 kB", "now"
	assert.Len(t, r.Values(), 11)
}

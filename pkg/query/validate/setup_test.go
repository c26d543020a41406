/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"testing"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../../test/fixtures/catalog.yaml"

type fixture struct {
	snapshot  *catalog.Snapshot
	registry  *Registry
	validator *QueryValidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snapshot, err := catalog.LoadSnapshotFile(fixturePath)
	require.NoError(t, err)
	permissions, err := catalog.NewPermissions()
	require.NoError(t, err)

	registry := NewRegistry(&Services{
		Catalog:     snapshot,
		Permissions: permissions,
		History:     history.NewMemory(snapshot.ChangeList),
		Log:         zerolog.Nop(),
	})
	require.NoError(t, registry.Refresh(context.Background()))

	return &fixture{
		snapshot:  snapshot,
		registry:  registry,
		validator: NewQueryValidator(registry, zerolog.Nop()),
	}
}

func (f *fixture) user(t *testing.T, name string) *catalog.User {
	t.Helper()
	if name == "" {
		return nil
	}
	u, err := f.snapshot.User(context.Background(), name)
	require.NoError(t, err)
	return u
}

func (f *fixture) validate(t *testing.T, user string, where clause.Clause) *message.Set {
	return f.validator.Validate(context.Background(), f.user(t, user), &clause.Query{Where: where}, Options{})
}

func strs(messages []message.Message) []string {
	var ret []string
	for _, m := range messages {
		ret = append(ret, m.String())
	}
	return ret
}

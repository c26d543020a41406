/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"testing"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseREPLCommand(t *testing.T) {
	t.Run("session", func(t *testing.T) {
		s := &Session{}
		for _, line := range []string{"user fred", "LOCALE de", "filter 100"} {
			_, send, err := s.ParseREPLCommand([]byte(line))
			require.NoError(t, err)
			assert.False(t, send)
		}
		assert.Equal(t, Session{User: "fred", Locale: "de", FilterID: 100}, *s)

		_, _, err := s.ParseREPLCommand([]byte("user"))
		require.NoError(t, err)
		_, _, err = s.ParseREPLCommand([]byte("filter"))
		require.NoError(t, err)
		assert.Equal(t, Session{Locale: "de"}, *s)
	})
	t.Run("validate", func(t *testing.T) {
		s := &Session{User: "fred", FilterID: 7}
		doc := `where: {field: project, operator: "=", value: TEST}`
		msg, send, err := s.ParseREPLCommand([]byte("validate " + doc))
		require.NoError(t, err)
		assert.True(t, send)
		assert.Equal(t, proto.CommandValidate, msg.Command)

		var req proto.ValidateRequest
		require.NoError(t, msg.Unmarshal(&req))
		assert.Equal(t, proto.ValidateRequest{User: "fred", FilterID: 7, Document: doc}, req)
	})
	t.Run("validate shorthand", func(t *testing.T) {
		s := &Session{}
		doc := `{where: {field: project, operator: "=", value: TEST}}`
		msg, send, err := s.ParseREPLCommand([]byte("  " + doc))
		require.NoError(t, err)
		assert.True(t, send)

		var req proto.ValidateRequest
		require.NoError(t, msg.Unmarshal(&req))
		assert.Equal(t, doc, req.Document)
	})
	t.Run("validate no document", func(t *testing.T) {
		_, _, err := (&Session{}).ParseREPLCommand([]byte("validate"))
		assert.Error(t, err)
	})
	t.Run("fields defaults to session user", func(t *testing.T) {
		s := &Session{User: "mary"}
		msg, send, err := s.ParseREPLCommand([]byte("fields"))
		require.NoError(t, err)
		assert.True(t, send)

		var req proto.FieldsRequest
		require.NoError(t, msg.Unmarshal(&req))
		assert.Equal(t, "mary", req.User)

		msg, _, err = s.ParseREPLCommand([]byte("fields admin"))
		require.NoError(t, err)
		require.NoError(t, msg.Unmarshal(&req))
		assert.Equal(t, "admin", req.User)
	})
	t.Run("functions", func(t *testing.T) {
		msg, send, err := (&Session{}).ParseREPLCommand([]byte("functions"))
		require.NoError(t, err)
		assert.True(t, send)
		assert.Equal(t, proto.CommandFunctions, msg.Command)
	})
	t.Run("bad filter id", func(t *testing.T) {
		_, _, err := (&Session{}).ParseREPLCommand([]byte("filter abc"))
		assert.Error(t, err)
	})
	t.Run("unknown", func(t *testing.T) {
		_, _, err := (&Session{}).ParseREPLCommand([]byte("append / a"))
		assert.ErrorIs(t, err, ErrUnknownCommand)
	})
	t.Run("empty line", func(t *testing.T) {
		_, send, err := (&Session{}).ParseREPLCommand([]byte("   "))
		require.NoError(t, err)
		assert.False(t, send)
	})
}

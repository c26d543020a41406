/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package message

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyLocalizer struct{}

func (keyLocalizer) Text(key string, args ...string) string {
	return strings.Join(append([]string{key}, args...), " ")
}

func TestSetOrderAndDedupe(t *testing.T) {
	s := New()
	s.AddError("b", "1")
	s.AddError("a")
	s.AddError("b", "1")
	s.AddError("b", "2")
	s.AddWarning("b", "1")
	s.AddWarning("b", "1")

	assert.Equal(t, []Message{{Key: "b", Args: []string{"1"}}, {Key: "a"}, {Key: "b", Args: []string{"2"}}}, s.Errors())
	assert.Equal(t, []Message{{Key: "b", Args: []string{"1"}}}, s.Warnings())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []Reason{ValidationFailed}, s.Reasons())
}

func TestZeroAndNilSets(t *testing.T) {
	var zero Set
	assert.False(t, zero.HasAnyMessages())
	zero.AddWarning("w")
	assert.True(t, zero.HasAnyWarnings())
	assert.False(t, zero.HasAnyErrors())

	var nilSet *Set
	assert.False(t, nilSet.HasAnyErrors())
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.Errors())
	assert.NoError(t, nilSet.Err(keyLocalizer{}))
}

func TestAddSet(t *testing.T) {
	a := New()
	a.AddError("x")
	a.AddWarning("w1")

	b := New()
	b.AddErrorWithReason(NotFound, "y", "v")
	b.AddError("x")
	b.AddWarning("w2")

	a.AddSet(b)
	a.AddSet(nil)

	assert.Equal(t, []Message{{Key: "x"}, {Key: "y", Args: []string{"v"}}}, a.Errors())
	assert.Equal(t, []Message{{Key: "w1"}, {Key: "w2"}}, a.Warnings())
	assert.Equal(t, []Reason{ValidationFailed, NotFound}, a.Reasons())
}

func TestRenderAndErr(t *testing.T) {
	s := New()
	s.AddWarning("careful", "x")
	assert.NoError(t, s.Err(keyLocalizer{}))

	s.AddErrorWithReason(Forbidden, "denied", "TEST")
	err := s.Err(keyLocalizer{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"denied TEST"}, verr.Messages)
	assert.Equal(t, []Reason{Forbidden}, verr.Reasons)
	assert.Equal(t, "denied TEST", err.Error())

	r := s.Render(keyLocalizer{})
	assert.Equal(t, []string{"careful x"}, r.Warnings)
}

func TestMarshalZerologObject(t *testing.T) {
	s := New()
	s.AddError("e1")
	s.AddWarning("w1")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("messages", s).Msg("validated")

	assert.JSONEq(t, `{"level":"info","messages":{"errors":1,"warnings":1,"error_keys":["e1"],"warning_keys":["w1"]},"message":"validated"}`, buf.String())
}

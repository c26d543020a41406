/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/dburkart/jql/pkg/query/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var result Message

func TestParseMessage(t *testing.T) {
	tt := []struct {
		test string
		buf  []byte
		cmd  string
		data string
		err  bool
	}{
		{"Test empty message", []byte("\r\n"), "", "", true},
		{"Test blank message", []byte("   \n"), "", "", true},
		{"Test leading space", []byte(" {}\n"), "", "", true},
		{"Test simple message", []byte("fields {}\n\n\n"), "FIELDS", "{}", false},
		{"Test no terminator", []byte("VALIDATE {\"document\":\"\"}"), "VALIDATE", "{\"document\":\"\"}", false},
		{"Test bare command", []byte("functions\r\n"), "FUNCTIONS", "", false},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			msg, err := ParseMessage(tc.buf)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cmd, msg.Command)
			assert.Equal(t, tc.data, string(msg.Data))
		})
	}
}

func TestReadMessage(t *testing.T) {
	buf := new(bytes.Buffer)
	rw := NewResponseWriter(buf)
	_, err := rw.WriteResponse(CommandValidate, ValidateRequest{User: "fred", Document: "where:\n  field: project\n"})
	require.NoError(t, err)
	_, err = rw.WriteMessage(MessageOk)
	require.NoError(t, err)

	r := bufio.NewReader(buf)
	msg, err := ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, CommandValidate, msg.Command)

	var req ValidateRequest
	require.NoError(t, msg.Unmarshal(&req))
	assert.Equal(t, "fred", req.User)
	assert.Equal(t, "where:\n  field: project\n", req.Document)

	msg, err = ReadMessage(r)
	require.NoError(t, err)
	var ok OkResponse
	require.NoError(t, msg.Unmarshal(&ok))
	assert.Equal(t, uint32(200), ok.Code)

	_, err = ReadMessage(r)
	assert.Error(t, err)
}

func TestErrorMessageUnmarshal(t *testing.T) {
	msg := MessageErrorCommandNotFound
	assert.Equal(t, CommandError, msg.Command)

	var rsp FieldsResponse
	err := msg.Unmarshal(&rsp)
	require.Error(t, err)

	var errRsp ErrResponse
	require.ErrorAs(t, err, &errRsp)
	assert.Equal(t, uint32(404), errRsp.Code)
	assert.Equal(t, "404 command not found", err.Error())
}

func TestFunctionsRequestHasNoPayload(t *testing.T) {
	msg := NewMessageWithType(CommandFunctions, FunctionsRequest{})
	assert.Equal(t, "FUNCTIONS\n", string(msg.Marshal()))
}

func TestPrintable(t *testing.T) {
	rsp := ValidateResponse{
		Errors:   []string{"Field 'foo' does not exist."},
		Warnings: []string{"duplicate"},
		ErrorKeys: []message.Message{
			{Key: "jql.validation.no.such.field", Args: []string{"foo"}},
		},
	}
	assert.Equal(t, [][]string{
		{"error", "Field 'foo' does not exist."},
		{"warning", "duplicate"},
	}, rsp.Values())

	fields := FieldsResponse{Fields: []FieldInfo{
		{ID: "issuekey", Names: []string{"issue", "key"}, Type: "issue", Operators: []string{"=", "!="}, Orderable: true},
	}}
	assert.Equal(t, [][]string{
		{"issuekey", "issue, key", "issue", "= !=", "true", "false"},
	}, fields.Values())
	assert.Len(t, fields.Headers(), 6)
}

func BenchmarkReadMessage(b *testing.B) {
	line := MessageErrorCommandNotFound.Marshal()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ret, _ := ReadMessage(bufio.NewReader(bytes.NewReader(line)))
		result = ret
	}
}

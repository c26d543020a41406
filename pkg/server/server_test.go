/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/i18n"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/query/validate"
	"github.com/dburkart/jql/pkg/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../test/fixtures/catalog.yaml"

func newServer(t *testing.T) (*server.Server, *catalog.Snapshot) {
	t.Helper()

	snapshot, err := catalog.LoadSnapshotFile(fixturePath)
	require.NoError(t, err)
	permissions, err := catalog.NewPermissions()
	require.NoError(t, err)

	registry := validate.NewRegistry(&validate.Services{
		Catalog:     snapshot,
		Permissions: permissions,
		History:     history.NewMemory(snapshot.ChangeList),
		Log:         zerolog.Nop(),
	})
	require.NoError(t, registry.Refresh(context.Background()))

	translator, err := i18n.New()
	require.NoError(t, err)

	return server.New(zerolog.Nop(), registry, translator, server.Config{Version: "test"}), snapshot
}

func send(t *testing.T, mux server.MessageMux, cmd string, req proto.Marshaler) proto.Message {
	t.Helper()

	buf := new(bytes.Buffer)
	mux.ServeMessage(context.Background(), buf, proto.NewMessageWithType(cmd, req))
	rsp, err := proto.ReadMessage(bufio.NewReader(buf))
	require.NoError(t, err)
	return rsp
}

func errorCode(t *testing.T, msg proto.Message) uint32 {
	t.Helper()

	require.Equal(t, proto.CommandError, msg.Command)
	var rsp proto.ErrResponse
	require.NoError(t, rsp.Unmarshal(msg.Data))
	return rsp.Code
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if labels[l.GetName()] != l.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestValidateCommand(t *testing.T) {
	s, _ := newServer(t)
	mux := s.Mux()

	msg := send(t, mux, proto.CommandValidate, proto.ValidateRequest{
		User:     "fred",
		Document: "where: {field: project, operator: \"=\", value: SEC}\n",
	})
	require.Equal(t, proto.CommandValidate, msg.Command)

	var rsp proto.ValidateResponse
	require.NoError(t, msg.Unmarshal(&rsp))
	assert.False(t, rsp.Valid)
	assert.NotEmpty(t, rsp.RequestID)
	assert.Equal(t, "project = SEC", rsp.Query)
	assert.Equal(t, []string{"The value 'SEC' does not exist for the field 'project'."}, rsp.Errors)
	require.Len(t, rsp.ErrorKeys, 1)
	assert.Equal(t, validate.KeyNoValueForName, rsp.ErrorKeys[0].Key)
	assert.Equal(t, []string{"project", "SEC"}, rsp.ErrorKeys[0].Args)

	msg = send(t, mux, proto.CommandValidate, proto.ValidateRequest{
		User:     "fred",
		Document: `{"where": {"field": "project", "operator": "=", "value": "TEST"}}`,
	})
	rsp = proto.ValidateResponse{}
	require.NoError(t, msg.Unmarshal(&rsp))
	assert.True(t, rsp.Valid)
	assert.Empty(t, rsp.Errors)
	assert.Empty(t, rsp.Warnings)

	reg := s.Metrics().Registry()
	assert.Equal(t, 1.0, counterValue(t, reg, "jql_validations", map[string]string{"outcome": "invalid"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "jql_validations", map[string]string{"outcome": "valid"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "jql_requests", map[string]string{"cmd": proto.CommandValidate}))
	assert.Equal(t, 1.0, counterValue(t, reg, "jql_validation_messages", map[string]string{
		"level": "error",
		"key":   validate.KeyNoValueForName,
	}))
}

func TestValidateErrors(t *testing.T) {
	s, _ := newServer(t)
	mux := s.Mux()

	msg := send(t, mux, proto.CommandValidate, proto.ValidateRequest{
		User:     "nobody",
		Document: "where: {field: project, operator: \"=\", value: TEST}\n",
	})
	assert.Equal(t, uint32(404), errorCode(t, msg))

	msg = send(t, mux, proto.CommandValidate, proto.ValidateRequest{Document: "where: [1, 2]\n"})
	assert.Equal(t, uint32(400), errorCode(t, msg))

	buf := new(bytes.Buffer)
	mux.ServeMessage(context.Background(), buf, proto.Message{Command: proto.CommandValidate, Data: []byte("not json")})
	msg, err := proto.ReadMessage(bufio.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, uint32(400), errorCode(t, msg))
}

func TestFieldsCommand(t *testing.T) {
	s, _ := newServer(t)

	msg := send(t, s.Mux(), proto.CommandFields, proto.FieldsRequest{User: "fred"})
	var rsp proto.FieldsResponse
	require.NoError(t, msg.Unmarshal(&rsp))

	ids := map[string]proto.FieldInfo{}
	for _, f := range rsp.Fields {
		ids[f.ID] = f
	}
	require.Contains(t, ids, "project")
	assert.Equal(t, "project", ids["project"].Type)
	assert.True(t, ids["project"].Orderable)
	assert.Contains(t, ids["project"].Operators, "=")
	require.Contains(t, ids, "issuekey")
	assert.Contains(t, ids["issuekey"].Names, "key")

	msg = send(t, s.Mux(), proto.CommandFields, proto.FieldsRequest{User: "nobody"})
	assert.Equal(t, uint32(404), errorCode(t, msg))
}

func TestFunctionsCommand(t *testing.T) {
	s, _ := newServer(t)

	msg := send(t, s.Mux(), proto.CommandFunctions, proto.FunctionsRequest{})
	var rsp proto.FunctionsResponse
	require.NoError(t, msg.Unmarshal(&rsp))
	assert.Len(t, rsp.Functions, 26)

	found := false
	for _, f := range rsp.Functions {
		if f.Name == "currentUser" {
			found = true
			assert.Equal(t, "user", f.Type)
			assert.Equal(t, "0", f.Arguments)
		}
	}
	assert.True(t, found)
}

func TestVersionCommand(t *testing.T) {
	s, _ := newServer(t)

	msg := send(t, s.Mux(), proto.CommandVersion, proto.VersionRequest{Version: "client"})
	var rsp proto.VersionResponse
	require.NoError(t, msg.Unmarshal(&rsp))
	assert.Equal(t, uint32(200), rsp.Code)
	assert.Equal(t, "test", rsp.Version)
}

func TestCatalogStatsCollector(t *testing.T) {
	_, snapshot := newServer(t)

	c := server.NewCatalogStatsCollector(snapshot)
	assert.Equal(t, 6, testutil.CollectAndCount(c))
	assert.Equal(t, 6, testutil.CollectAndCount(c, "jql_catalog_projects", "jql_catalog_filters",
		"jql_catalog_custom_fields", "jql_catalog_users", "jql_catalog_issues", "jql_catalog_changes"))
}

func TestServeConnection(t *testing.T) {
	s, _ := newServer(t)

	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.NewMessageServer(zerolog.Nop(), s.Metrics()).Serve(ctx, sock, s.Mux())
	}()

	c, err := net.Dial("tcp", sock.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	r := bufio.NewReader(c)

	_, err = c.Write([]byte("\n functions\nfunctions\nPING\n"))
	require.NoError(t, err)

	msg, err := proto.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(400), errorCode(t, msg))

	msg, err = proto.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, proto.CommandFunctions, msg.Command)

	msg, err = proto.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(404), errorCode(t, msg))

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1.0, counterValue(t, s.Metrics().Registry(), "jql_client_connections", nil))
}

func TestShutdownClosesConnections(t *testing.T) {
	s, _ := newServer(t)

	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.NewMessageServer(zerolog.Nop(), s.Metrics()).Serve(ctx, sock, s.Mux())
	}()

	c, err := net.Dial("tcp", sock.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	r := bufio.NewReader(c)

	_, err = c.Write([]byte("FUNCTIONS\n"))
	require.NoError(t, err)
	msg, err := proto.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, proto.CommandFunctions, msg.Command)

	// The client stays connected; shutting down must still hang up on it.
	cancel()
	require.NoError(t, <-done)

	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

/*
 * Copyright (c) 2022-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package jql

import (
	"github.com/dburkart/jql/internal/backend"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/rs/zerolog"
)

// Version is announced to servers during the connection handshake.
var Version = "develop"

type Client interface {
	Open(proto.ConnectionString, uint) error
	Close() error
	Send(proto.Message) (proto.Message, error)
	Validate(proto.ValidateRequest) (proto.ValidateResponse, error)
	Fields(user string) (proto.FieldsResponse, error)
	Functions() (proto.FunctionsResponse, error)
}

type options struct {
	log     zerolog.Logger
	backend backend.Config
}

type Option func(*options)

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithBackend configures the history index and message bundles of a local
// client. The catalog always comes from the connection string.
func WithBackend(cfg backend.Config) Option {
	return func(o *options) {
		o.backend = cfg
	}
}

// NewClient creates a new Client which can be used to validate queries
// against a remote jql server, or against a local catalog in-process. The
// client is thread safe, but only holds one connection at a time. For a
// client pool, use NewClientPool instead.
func NewClient(connstr string, opts ...Option) (Client, error) {
	client, err := NewClientPool(connstr, 1, opts...)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// NewClientPool creates a new Client which holds a pool of net.Conn
// resources open to a remote jql server.
func NewClientPool(connstr string, size uint, opts ...Option) (Client, error) {
	var client Client

	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	target, err := proto.ParseConnectionString(connstr)
	if err != nil {
		return nil, err
	}

	if target.Local {
		client = &LocalClient{opts: o}
	} else {
		client = &RemoteClient{log: o.log}
	}

	err = client.Open(target, size)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// requests implements the typed calls on top of a Send function.
type requests struct {
	send func(proto.Message) (proto.Message, error)
}

func (r requests) roundTrip(cmd string, req proto.Marshaler, rsp proto.Unmarshaler) error {
	msg, err := r.send(proto.NewMessageWithType(cmd, req))
	if err != nil {
		return err
	}
	return msg.Unmarshal(rsp)
}

// Validate sends a query document for validation. Validation problems are
// reported in the response; the error is only set when the request itself
// failed.
func (r requests) Validate(req proto.ValidateRequest) (proto.ValidateResponse, error) {
	var rsp proto.ValidateResponse
	err := r.roundTrip(proto.CommandValidate, req, &rsp)
	return rsp, err
}

// Fields lists the fields user may search. An empty user is anonymous.
func (r requests) Fields(user string) (proto.FieldsResponse, error) {
	var rsp proto.FieldsResponse
	err := r.roundTrip(proto.CommandFields, proto.FieldsRequest{User: user}, &rsp)
	return rsp, err
}

func (r requests) Functions() (proto.FunctionsResponse, error) {
	var rsp proto.FunctionsResponse
	err := r.roundTrip(proto.CommandFunctions, proto.FunctionsRequest{}, &rsp)
	return rsp, err
}

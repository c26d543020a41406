/*
 * Copyright (c) 2023-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package jql

import (
	"bufio"
	"bytes"
	"context"

	"github.com/dburkart/jql/internal/backend"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/server"
)

// A LocalClient validates in-process against a catalog file.
type LocalClient struct {
	requests

	opts    options
	target  proto.ConnectionString
	backend *backend.Backend
	mux     server.MessageMux
}

func (client *LocalClient) Open(target proto.ConnectionString, _ uint) error {
	cfg := client.opts.backend
	cfg.Catalog = target.Catalog

	b, err := backend.Open(context.Background(), cfg, client.opts.log)
	if err != nil {
		return err
	}

	client.target = target
	client.backend = b
	client.mux = server.NewHandler(client.opts.log, b.Registry, b.Translator, Version).Mux()
	client.requests = requests{send: client.Send}

	return nil
}

func (client *LocalClient) Close() error {
	if client.backend == nil {
		return nil
	}
	return client.backend.Close()
}

func (client *LocalClient) Send(message proto.Message) (proto.Message, error) {
	buf := new(bytes.Buffer)
	client.mux.ServeMessage(context.Background(), buf, message)
	return proto.ReadMessage(bufio.NewReader(buf))
}

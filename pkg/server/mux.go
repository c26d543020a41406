/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// maxMessageSize bounds a single protocol line.
const maxMessageSize = 4 * 1024 * 1024

type MessageMux interface {
	ServeMessage(ctx context.Context, w io.Writer, msg proto.Message)
	Handle(s string, f HandleMessage)
}

type HandleMessage func(context.Context, io.Writer, proto.Message)

// Middleware wraps the handler registered for cmd.
type Middleware func(cmd string, next HandleMessage) HandleMessage

type MapMux struct {
	handlers   map[string]HandleMessage
	middleware []Middleware
}

func NewMapMux(middleware ...Middleware) MessageMux {
	return &MapMux{
		handlers:   make(map[string]HandleMessage),
		middleware: middleware,
	}
}

// ServeMessage dispatches msg to its handler. Unknown commands are answered
// with an ERROR message.
func (mm *MapMux) ServeMessage(ctx context.Context, w io.Writer, msg proto.Message) {
	f, ok := mm.handlers[msg.Command]
	if !ok {
		proto.NewResponseWriter(w).WriteMessage(proto.MessageErrorCommandNotFound)
		return
	}
	f(ctx, w, msg)
}

func (mm *MapMux) Handle(s string, f HandleMessage) {
	for i := len(mm.middleware) - 1; i >= 0; i-- {
		f = mm.middleware[i](s, f)
	}
	mm.handlers[s] = f
}

type MessageServer struct {
	log     zerolog.Logger
	metrics MetricsStore
}

func NewMessageServer(log zerolog.Logger, metrics MetricsStore) *MessageServer {
	return &MessageServer{log: log, metrics: metrics}
}

func (ms *MessageServer) ListenAndServe(ctx context.Context, port int, mux MessageMux) error {
	sock, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		ms.log.Error().Err(err).Int("port", port).Msg("unable to listen on validation port")
		return errors.Wrapf(err, "listening on port %d", port)
	}
	ms.log.Info().Int("port", port).Msg("listening for validation requests")

	return ms.Serve(ctx, sock, mux)
}

// Serve accepts connections on sock until ctx is done, handling each one on
// its own goroutine.
func (ms *MessageServer) Serve(ctx context.Context, sock net.Listener, mux MessageMux) error {
	go func() {
		<-ctx.Done()
		sock.Close()
	}()

	for {
		c, err := sock.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			ms.log.Error().Err(err).Msg("unable to accept connection on validation socket")
			continue
		}

		ms.metrics.IncClientConnection()
		cn := newConn(ms.log, mux)
		go cn.Handle(ctx, c)
	}
}

type conn struct {
	log zerolog.Logger
	c   net.Conn

	mux MessageMux
}

func newConn(log zerolog.Logger, mux MessageMux) *conn {
	return &conn{
		log: log.With().Str("conn", uuid.NewString()).Logger(),
		mux: mux,
	}
}

func (c *conn) Handle(ctx context.Context, nc net.Conn) {
	c.c = nc
	defer c.c.Close()

	// Unblock the reader when the server shuts down
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-closed:
		}
	}()

	c.log.Debug().Str("remote", nc.RemoteAddr().String()).Msg("client connected")

	scanner := bufio.NewScanner(c.c)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	w := bufio.NewWriter(c.c)
	rw := proto.NewResponseWriter(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		msg, err := proto.ParseMessage(line)
		if err != nil {
			c.log.Trace().Bytes("buf", line).Send()
			c.log.Error().Err(err).Msg("error parsing message from buffer")
			rw.WriteResponse(proto.CommandError, proto.ErrResponse{Code: 400, Message: err.Error()})
		} else {
			c.log.Debug().Object("msg", msg).Msg("parsed message")
			c.mux.ServeMessage(ctx, w, msg)
		}

		if err := w.Flush(); err != nil {
			c.log.Error().Err(err).Msg("unable to write response")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.log.Error().Err(err).Msg("error reading from the conn")
		return
	}
	c.log.Debug().Msg("client disconnected")
}

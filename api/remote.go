/*
 * Copyright (c) 2023-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package jql

import (
	"bufio"
	"io"
	"math"
	"net"
	"syscall"
	"time"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// A RemoteClient holds the data needed to interact with a jql server.
type RemoteClient struct {
	requests

	log    zerolog.Logger
	target proto.ConnectionString
	conn   chan *remoteConn
}

type remoteConn struct {
	net.Conn
	r *bufio.Reader
}

func dial(address string) (*remoteConn, error) {
	c, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	rc := &remoteConn{Conn: c, r: bufio.NewReader(c)}
	if err := rc.connect(); err != nil {
		c.Close()
		return nil, err
	}
	return rc, nil
}

// connect sends a version advertisement and checks the server accepts it.
func (c *remoteConn) connect() error {
	versionMsg := proto.NewMessageWithType(proto.CommandVersion, proto.VersionRequest{Version: Version})
	if _, err := c.Write(versionMsg.Marshal()); err != nil {
		return errors.Wrap(err, "unable to send version")
	}
	m, err := proto.ReadMessage(c.r)
	if err != nil {
		return errors.Wrap(err, "unable to parse server version response")
	}
	version := proto.VersionResponse{}
	err = m.Unmarshal(&version)
	if err != nil {
		return errors.Wrap(err, "unable to unmarshal version response")
	}
	if version.Code != 200 {
		return errors.New("server rejected client version")
	}
	return nil
}

func (client *RemoteClient) reconnectWithBackoff() (*remoteConn, error) {
	var conn *remoteConn
	var err error

	// Try for a total of 7 seconds
	for i := 0; i < 3; i++ {
		delay := time.Duration(math.Exp2(float64(i)))
		time.Sleep(delay * time.Second)

		conn, err = dial(client.target.Address)
		if err == nil {
			break
		}
		client.log.Warn().Err(err).Int("attempt", i+1).Str("address", client.target.Address).Msg("reconnect failed")
	}

	return conn, err
}

func (client *RemoteClient) Open(connectionString proto.ConnectionString, size uint) error {
	client.target = connectionString
	client.conn = make(chan *remoteConn, size)
	client.requests = requests{send: client.Send}

	for i := uint(0); i < size; i++ {
		c, err := dial(client.target.Address)
		if err != nil {
			client.Close()
			return err
		}
		client.conn <- c
	}

	return nil
}

func (client *RemoteClient) Close() error {
	var firstErr error
	for n := len(client.conn); n > 0; n-- {
		conn := <-client.conn
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func isReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, io.EOF)
}

// Send a general message to the jql server.
func (client *RemoteClient) Send(m proto.Message) (proto.Message, error) {
	data := m.Marshal()

	conn := <-client.conn
	defer func() {
		client.conn <- conn
	}()

	retried := false
retry:
	_, err := conn.Write(data)
	if err == nil {
		var resp proto.Message
		resp, err = proto.ReadMessage(conn.r)
		if err == nil {
			return resp, nil
		}
	}

	// Handle peer reset with reconnect logic
	if !retried && isReset(err) {
		fresh, rerr := client.reconnectWithBackoff()
		if rerr != nil {
			return proto.Message{}, rerr
		}
		conn.Close()
		conn = fresh
		retried = true
		// We use a goto here because we need to retry sending our message,
		// however, if we recursively call Send() we'll end up with a
		// duplicated connection in our pool.
		goto retry
	}
	return proto.Message{}, err
}

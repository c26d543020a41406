/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrMalformedMessage = errors.New("malformed message")

var (
	MessageOk                   = NewMessageWithType(CommandOk, OkResponse{Code: 200, Message: "Ok"})
	MessageErrorCommandNotFound = NewMessageWithType(CommandError, ErrResponse{Code: 404, Message: "command not found"})
)

// Message is one line of the protocol: an upper case command, a space and
// an optional payload.
type Message struct {
	Command string
	Data    []byte
}

// NewMessageWithType builds a message from a typed payload. A payload that
// fails to marshal produces an ERROR message instead.
func NewMessageWithType(cmd string, t Marshaler) Message {
	b, err := t.Marshal()
	if err != nil {
		b, _ = ErrResponse{Code: 506, Message: err.Error()}.Marshal()
		return Message{Command: CommandError, Data: b}
	}
	return Message{Command: cmd, Data: b}
}

// ParseMessage parses a single line. Trailing line terminators are ignored
// and a command without a payload is allowed.
func ParseMessage(b []byte) (Message, error) {
	ret := Message{}

	b = bytes.TrimRight(b, "\r\n")
	if len(bytes.TrimSpace(b)) == 0 {
		return ret, ErrMalformedMessage
	}

	ind := bytes.IndexByte(b, ' ')
	if ind == -1 {
		ret.Command = strings.ToUpper(string(b))
		return ret, nil
	}
	if ind == 0 {
		return ret, errors.Wrap(ErrMalformedMessage, "missing command")
	}
	ret.Command = strings.ToUpper(string(b[0:ind]))
	ret.Data = b[ind+1:]

	return ret, nil
}

// ReadMessage reads the next line from r.
func ReadMessage(r *bufio.Reader) (Message, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && !(err == io.EOF && len(line) > 0) {
		return Message{}, err
	}
	return ParseMessage(line)
}

// Marshal returns the wire form of the message, newline terminated.
func (m Message) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(m.Command) + len(m.Data) + 2)
	buf.WriteString(m.Command)
	if len(m.Data) > 0 {
		buf.WriteByte(' ')
		buf.Write(m.Data)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Unmarshal decodes the payload into t.
func (m Message) Unmarshal(t Unmarshaler) error {
	if m.Command == CommandError {
		var rsp ErrResponse
		if err := rsp.Unmarshal(m.Data); err != nil {
			return err
		}
		return rsp
	}
	return t.Unmarshal(m.Data)
}

func (m Message) MarshalZerologObject(e *zerolog.Event) {
	e.Str("command", m.Command).Int("bytes", len(m.Data))
}

type Marshaler interface {
	Marshal() ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal([]byte) error
}

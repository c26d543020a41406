/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/pkg/errors"
)

// Shell commands
const (
	CommandUser   = "USER"
	CommandLocale = "LOCALE"
	CommandFilter = "FILTER"
)

var ErrUnknownCommand = errors.New("unknown command")

// Session is the state a shell attaches to every request.
type Session struct {
	User     string
	Locale   string
	FilterID int64
}

// ParseREPLCommand parses input from the command line. Session commands
// update s and return send == false; every other command returns the
// message to send.
//
// A line starting with '{' is shorthand for "validate <line>".
//
// This function assumes there is no '\n'
func (s *Session) ParseREPLCommand(b []byte) (proto.Message, bool, error) {
	var msg proto.Message

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return msg, false, nil
	}
	if b[0] == '{' {
		return s.validate(b), true, nil
	}

	// all commands have a space after them, if not then they are command only
	// like FIELDS
	var cmd, data []byte
	ind := bytes.IndexByte(b, ' ')
	if ind == -1 {
		cmd = b
	} else {
		cmd = b[0:ind]
		data = bytes.TrimSpace(b[ind+1:])
	}

	switch strings.ToUpper(string(cmd)) {
	case proto.CommandValidate:
		if len(data) == 0 {
			return msg, false, errors.New("validate requires a query document")
		}
		return s.validate(data), true, nil
	case proto.CommandFields:
		user := s.User
		if len(data) > 0 {
			user = string(data)
		}
		return proto.NewMessageWithType(proto.CommandFields, proto.FieldsRequest{User: user}), true, nil
	case proto.CommandFunctions:
		return proto.NewMessageWithType(proto.CommandFunctions, proto.FunctionsRequest{}), true, nil
	case CommandUser:
		s.User = string(data)
		return msg, false, nil
	case CommandLocale:
		s.Locale = string(data)
		return msg, false, nil
	case CommandFilter:
		if len(data) == 0 {
			s.FilterID = 0
			return msg, false, nil
		}
		id, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return msg, false, errors.Wrapf(err, "invalid filter id %q", data)
		}
		s.FilterID = id
		return msg, false, nil
	}

	return msg, false, errors.Wrapf(ErrUnknownCommand, "%s", cmd)
}

func (s *Session) validate(doc []byte) proto.Message {
	return proto.NewMessageWithType(proto.CommandValidate, proto.ValidateRequest{
		User:     s.User,
		Locale:   s.Locale,
		FilterID: s.FilterID,
		Document: string(doc),
	})
}

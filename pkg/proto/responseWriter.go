/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"io"
)

type ResponseWriter struct {
	w io.Writer
}

// NewResponseWriter ...
func NewResponseWriter(w io.Writer) ResponseWriter {
	return ResponseWriter{
		w: w,
	}
}

func (rw ResponseWriter) Write(b []byte) (int, error) {
	return rw.w.Write(b)
}

// WriteMessage writes m as a single line.
func (rw ResponseWriter) WriteMessage(m Message) (int, error) {
	return rw.w.Write(m.Marshal())
}

// WriteResponse marshals t and writes it under cmd.
func (rw ResponseWriter) WriteResponse(cmd string, t Marshaler) (int, error) {
	return rw.WriteMessage(NewMessageWithType(cmd, t))
}

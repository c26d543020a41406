/*
 * Copyright (c) 2023, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package report

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/olekukonko/tablewriter"
)

// Formats accepted by NewOutputWriter.
var Formats = []string{"text", "csv", "json"}

type OutputWriter interface {
	Write(v proto.Printable) error
}

type CSVWriter struct {
	w io.Writer
}

type TextWriter struct {
	w io.Writer
}

type JSONWriter struct {
	w io.Writer
}

// NewOutputWriter returns the writer for format t, falling back to text.
func NewOutputWriter(w io.Writer, t string) OutputWriter {
	switch t {
	case "csv":
		return CSVWriter{
			w,
		}
	case "json":
		return JSONWriter{
			w,
		}
	}
	return TextWriter{
		w,
	}
}

func (w CSVWriter) Write(v proto.Printable) error {
	wtr := csv.NewWriter(w.w)
	if err := wtr.Write(v.Headers()); err != nil {
		return err
	}
	return wtr.WriteAll(v.Values())
}

func (w TextWriter) Write(v proto.Printable) error {
	headers := v.Headers()
	cells := make([]any, 0, len(headers))
	for _, h := range headers {
		cells = append(cells, h)
	}

	table := tablewriter.NewWriter(w.w)
	table.Header(cells...)
	if err := table.Bulk(v.Values()); err != nil {
		return err
	}
	return table.Render()
}

func (w JSONWriter) Write(v proto.Printable) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

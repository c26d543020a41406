/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dburkart/jql/pkg/query/message"
)

// Printable is a response that can be rendered as a table.
type Printable interface {
	Headers() []string
	Values() [][]string
}

var (
	_ Printable = ValidateResponse{}
	_ Printable = FieldsResponse{}
	_ Printable = FunctionsResponse{}
)

type (
	ErrResponse struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
	}

	OkResponse struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
	}

	VersionRequest struct {
		Version string `json:"version"`
	}

	VersionResponse struct {
		Code    uint32 `json:"code"`
		Version string `json:"version"`
	}

	// ValidateRequest carries a YAML or JSON query document.
	ValidateRequest struct {
		User     string `json:"user,omitempty"`
		Locale   string `json:"locale,omitempty"`
		FilterID int64  `json:"filterId,omitempty"`
		Document string `json:"document"`
	}

	ValidateResponse struct {
		RequestID   string            `json:"requestId"`
		Query       string            `json:"query"`
		Valid       bool              `json:"valid"`
		Errors      []string          `json:"errors"`
		Warnings    []string          `json:"warnings"`
		ErrorKeys   []message.Message `json:"errorKeys,omitempty"`
		WarningKeys []message.Message `json:"warningKeys,omitempty"`
		Reasons     []message.Reason  `json:"reasons,omitempty"`
	}

	FieldsRequest struct {
		User string `json:"user,omitempty"`
	}

	FieldInfo struct {
		ID        string   `json:"id"`
		Names     []string `json:"names"`
		Type      string   `json:"type"`
		Operators []string `json:"operators"`
		Orderable bool     `json:"orderable"`
		History   bool     `json:"history"`
	}

	FieldsResponse struct {
		Fields []FieldInfo `json:"fields"`
	}

	FunctionsRequest struct{}

	FunctionInfo struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		List      bool   `json:"list"`
		Arguments string `json:"arguments"`
	}

	FunctionsResponse struct {
		Functions []FunctionInfo `json:"functions"`
	}
)

// ErrResponse
// --------------------------

func (rq ErrResponse) Error() string {
	return strconv.FormatUint(uint64(rq.Code), 10) + " " + rq.Message
}

// Marshal ...
func (rq ErrResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *ErrResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// OkResponse
// --------------------------

// Marshal ...
func (rq OkResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *OkResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// VersionRequest
// --------------------------

// Marshal ...
func (rq VersionRequest) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *VersionRequest) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// VersionResponse
// --------------------------

// Marshal ...
func (rq VersionResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *VersionResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// ValidateRequest
// --------------------------

// Marshal ...
func (rq ValidateRequest) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *ValidateRequest) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// ValidateResponse
// --------------------------

// Marshal ...
func (rq ValidateResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *ValidateResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

func (rq ValidateResponse) Headers() []string {
	return []string{"level", "message"}
}

func (rq ValidateResponse) Values() [][]string {
	ret := make([][]string, 0, len(rq.Errors)+len(rq.Warnings))
	for _, e := range rq.Errors {
		ret = append(ret, []string{"error", e})
	}
	for _, w := range rq.Warnings {
		ret = append(ret, []string{"warning", w})
	}
	return ret
}

// FieldsRequest
// --------------------------

// Marshal ...
func (rq FieldsRequest) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *FieldsRequest) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, rq)
}

// FieldsResponse
// --------------------------

// Marshal ...
func (rq FieldsResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *FieldsResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

func (rq FieldsResponse) Headers() []string {
	return []string{"field", "names", "type", "operators", "orderable", "history"}
}

func (rq FieldsResponse) Values() [][]string {
	ret := make([][]string, 0, len(rq.Fields))
	for _, f := range rq.Fields {
		ret = append(ret, []string{
			f.ID,
			strings.Join(f.Names, ", "),
			f.Type,
			strings.Join(f.Operators, " "),
			strconv.FormatBool(f.Orderable),
			strconv.FormatBool(f.History),
		})
	}
	return ret
}

// FunctionsRequest
// --------------------------

// Marshal ...
func (rq FunctionsRequest) Marshal() ([]byte, error) {
	return nil, nil
}

// Unmarshal ...
func (rq *FunctionsRequest) Unmarshal(b []byte) error {
	return nil
}

// FunctionsResponse
// --------------------------

// Marshal ...
func (rq FunctionsResponse) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *FunctionsResponse) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

func (rq FunctionsResponse) Headers() []string {
	return []string{"function", "type", "list", "arguments"}
}

func (rq FunctionsResponse) Values() [][]string {
	ret := make([][]string, 0, len(rq.Functions))
	for _, f := range rq.Functions {
		ret = append(ret, []string{f.Name, f.Type, strconv.FormatBool(f.List), f.Arguments})
	}
	return ret
}

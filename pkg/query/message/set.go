/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package message

import (
	"strings"

	"github.com/rs/zerolog"
)

// Reason classifies why a set holds errors.
type Reason string

const (
	ValidationFailed Reason = "ValidationFailed"
	NotFound         Reason = "NotFound"
	Forbidden        Reason = "Forbidden"
	ServerError      Reason = "ServerError"
)

// Message is an i18n key and the positional arguments for its text.
type Message struct {
	Key  string   `json:"key"`
	Args []string `json:"args,omitempty"`
}

func (m Message) id() string {
	return m.Key + "\x00" + strings.Join(m.Args, "\x00")
}

func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Key
	}
	return m.Key + " [" + strings.Join(m.Args, ", ") + "]"
}

// Localizer turns a message key and its arguments into display text.
type Localizer interface {
	Text(key string, args ...string) string
}

// Set accumulates errors and warnings in insertion order. Adding a message
// already present at the same level is a no-op. The zero value is ready to
// use.
type Set struct {
	errors   []Message
	warnings []Message
	reasons  []Reason
	seen     map[string]bool
}

func New() *Set {
	return &Set{}
}

func (s *Set) add(level string, m Message) bool {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	id := level + "\x00" + m.id()
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	return true
}

func (s *Set) addReason(r Reason) {
	for _, existing := range s.reasons {
		if existing == r {
			return
		}
	}
	s.reasons = append(s.reasons, r)
}

func (s *Set) AddError(key string, args ...string) {
	s.AddErrorWithReason(ValidationFailed, key, args...)
}

func (s *Set) AddErrorWithReason(reason Reason, key string, args ...string) {
	m := Message{Key: key, Args: args}
	if s.add("e", m) {
		s.errors = append(s.errors, m)
	}
	s.addReason(reason)
}

func (s *Set) AddWarning(key string, args ...string) {
	m := Message{Key: key, Args: args}
	if s.add("w", m) {
		s.warnings = append(s.warnings, m)
	}
}

// AddSet merges other into s, keeping other's order and reasons.
func (s *Set) AddSet(other *Set) {
	if other == nil {
		return
	}
	for _, m := range other.errors {
		if s.add("e", m) {
			s.errors = append(s.errors, m)
		}
	}
	for _, m := range other.warnings {
		if s.add("w", m) {
			s.warnings = append(s.warnings, m)
		}
	}
	for _, r := range other.reasons {
		s.addReason(r)
	}
}

func (s *Set) HasAnyErrors() bool {
	return s != nil && len(s.errors) > 0
}

func (s *Set) HasAnyWarnings() bool {
	return s != nil && len(s.warnings) > 0
}

func (s *Set) HasAnyMessages() bool {
	return s.HasAnyErrors() || s.HasAnyWarnings()
}

func (s *Set) Errors() []Message {
	if s == nil {
		return nil
	}
	return append([]Message(nil), s.errors...)
}

func (s *Set) Warnings() []Message {
	if s == nil {
		return nil
	}
	return append([]Message(nil), s.warnings...)
}

func (s *Set) Reasons() []Reason {
	if s == nil {
		return nil
	}
	return append([]Reason(nil), s.reasons...)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.errors) + len(s.warnings)
}

// Rendered is a localized message set.
type Rendered struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (s *Set) Render(l Localizer) Rendered {
	r := Rendered{Errors: []string{}, Warnings: []string{}}
	for _, m := range s.Errors() {
		r.Errors = append(r.Errors, l.Text(m.Key, m.Args...))
	}
	for _, m := range s.Warnings() {
		r.Warnings = append(r.Warnings, l.Text(m.Key, m.Args...))
	}
	return r
}

// ValidationError reports the localized errors of a set.
type ValidationError struct {
	Messages []string
	Reasons  []Reason
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Err returns nil when the set has no errors. Warnings never produce an
// error.
func (s *Set) Err(l Localizer) error {
	if !s.HasAnyErrors() {
		return nil
	}
	return &ValidationError{Messages: s.Render(l).Errors, Reasons: s.Reasons()}
}

func (s *Set) MarshalZerologObject(e *zerolog.Event) {
	e.Int("errors", len(s.errors)).Int("warnings", len(s.warnings))
	if len(s.errors) > 0 {
		e.Strs("error_keys", keys(s.errors))
	}
	if len(s.warnings) > 0 {
		e.Strs("warning_keys", keys(s.warnings))
	}
}

func keys(messages []Message) []string {
	ret := make([]string, 0, len(messages))
	for _, m := range messages {
		ret = append(ret, m.Key)
	}
	return ret
}

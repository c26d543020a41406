/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"strings"
	"unicode"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

// stopWords are dropped by the full text analyzer.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// TextValidator checks free text queries: no empty value, no leading
// wildcard, balanced quotes and parentheses. A query made only of stop
// words gets a warning since it can never match.
type TextValidator struct{}

func (TextValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		value := strings.TrimSpace(l.Value())
		switch {
		case value == "":
			messages.AddError(KeyTextEmpty, c.Field)
		case strings.HasPrefix(value, "*") || strings.HasPrefix(value, "?"):
			messages.AddError(KeyTextLeadingWildcard, l.Value(), c.Field)
		case !wellFormedText(value):
			messages.AddError(KeyTextBadSyntax, l.Value(), c.Field)
		case onlyStopWords(value):
			messages.AddWarning(KeyTextStopWords, l.Value(), c.Field)
		}
	}
	return messages
}

func wellFormedText(s string) bool {
	var (
		depth   int
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return !escaped && !quoted && depth == 0
}

func onlyStopWords(s string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !stopWords[strings.ToLower(w)] {
			return false
		}
	}
	return true
}

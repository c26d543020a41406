/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

func notFound(messages *message.Set, field string, l Literal) {
	if l.IsInt {
		messages.AddError(KeyNoValueForID, field, l.Value())
	} else {
		messages.AddError(KeyNoValueForName, field, l.Value())
	}
}

// EntityValidator requires every value to resolve, by name or id, to one
// of the entities the searcher can see. Accept lists extra names that are
// valid without an entity, e.g. "Unresolved".
type EntityValidator[T catalog.Entity] struct {
	services *Services
	list     func(ctx context.Context, user *catalog.User) ([]T, error)
	accept   []string
}

func (v *EntityValidator[T]) Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	values := Values(c.Operand)
	if len(values) == 0 {
		return messages
	}

	items, err := v.list(ctx, user)
	if err != nil {
		v.services.lookupFailed(messages, err, c.Field, values[0].Value())
		return messages
	}

	for _, l := range values {
		if !l.IsInt && v.accepts(l.Str) {
			continue
		}
		if len(catalog.Find(items, l.Value(), l.IsInt)) == 0 {
			notFound(messages, c.Field, l)
		}
	}
	return messages
}

func (v *EntityValidator[T]) accepts(value string) bool {
	for _, a := range v.accept {
		if catalog.EqualFold(a, value) {
			return true
		}
	}
	return false
}

func catalogList[T catalog.Entity](list func(context.Context) ([]T, error)) func(context.Context, *catalog.User) ([]T, error) {
	return func(ctx context.Context, _ *catalog.User) ([]T, error) {
		return list(ctx)
	}
}

type statusCategory struct {
	id   int64
	name string
}

func (s statusCategory) EntityID() int64       { return s.id }
func (s statusCategory) EntityNames() []string { return []string{s.name} }

func statusCategories(context.Context, *catalog.User) ([]statusCategory, error) {
	ret := make([]statusCategory, 0, len(catalog.StatusCategories))
	for i, name := range catalog.StatusCategories {
		ret = append(ret, statusCategory{id: int64(i + 1), name: name})
	}
	return ret, nil
}

// UserValidator requires values to name a user by login, email or display
// name.
type UserValidator struct {
	services *Services
}

func (v *UserValidator) Validate(ctx context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		u, err := v.services.findUser(ctx, l.Value())
		if err != nil {
			v.services.lookupFailed(messages, err, c.Field, l.Value())
			return messages
		}
		if u == nil {
			messages.AddError(KeyNoValueForName, c.Field, l.Value())
		}
	}
	return messages
}

type GroupValidator struct {
	services *Services
}

func (v *GroupValidator) Validate(ctx context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		_, err := v.services.Catalog.Group(ctx, l.Value())
		switch {
		case isNotFound(err):
			messages.AddError(KeyNoValueForName, c.Field, l.Value())
		case err != nil:
			v.services.lookupFailed(messages, err, c.Field, l.Value())
			return messages
		}
	}
	return messages
}

// FeatureValidator fails when a tracker feature the field depends on is
// switched off.
type FeatureValidator struct {
	services *Services
	key      string
	enabled  func(catalog.Settings) bool
}

func (v *FeatureValidator) Validate(ctx context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	settings, err := v.services.settings(ctx)
	if err != nil {
		v.services.lookupFailed(messages, err, c.Field, "")
		return messages
	}
	if !v.enabled(settings) {
		messages.AddError(v.key, c.Field)
	}
	return messages
}

var (
	dateTimeLayouts = []string{"2006/01/02 15:04", "2006-01-02 15:04", "2006/01/02", "2006-01-02"}
	dateLayouts     = []string{"2006/01/02", "2006-01-02"}

	relativeDurationPattern = regexp.MustCompile(`^[-+]?\s*(\d+\s*[wdhmMy]\s*)+$`)
	durationPattern         = regexp.MustCompile(`^(\d+(\.\d+)?\s*[wdhm]\s*)+$`)
)

// IsDate reports whether value is an absolute date in one of the accepted
// layouts or a relative period such as "-5d" or "4w 2d".
func IsDate(value string, local bool) bool {
	value = strings.TrimSpace(value)
	if relativeDurationPattern.MatchString(value) {
		return true
	}

	layouts := dateTimeLayouts
	if local {
		layouts = dateLayouts
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// DateValidator accepts dates, relative periods and, unless Local, epoch
// milliseconds given as integers.
type DateValidator struct {
	Local bool
}

func (v DateValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	key := KeyDateInvalid
	if v.Local {
		key = KeyLocalDateInvalid
	}
	for _, l := range Values(c.Operand) {
		if l.IsInt && !v.Local {
			continue
		}
		if !IsDate(l.Value(), v.Local) {
			messages.AddError(key, l.Value(), c.Field)
		}
	}
	return messages
}

// DurationValidator accepts periods like "4d 3h" and plain minute counts.
type DurationValidator struct{}

func (DurationValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		if l.IsInt {
			continue
		}
		value := strings.TrimSpace(l.Str)
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			continue
		}
		if !durationPattern.MatchString(value) {
			messages.AddError(KeyDurationInvalid, l.Value(), c.Field)
		}
	}
	return messages
}

type PositiveIntegerValidator struct{}

func (PositiveIntegerValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		n := l.Int
		if !l.IsInt {
			var err error
			if n, err = strconv.ParseInt(strings.TrimSpace(l.Str), 10, 64); err != nil {
				n = -1
			}
		}
		if n < 0 {
			messages.AddError(KeyPositiveInteger, c.Field, l.Value())
		}
	}
	return messages
}

type NumberValidator struct{}

func (NumberValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		if l.IsInt {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(l.Str), 64); err != nil {
			messages.AddError(KeyNumberInvalid, l.Value(), c.Field)
		}
	}
	return messages
}

type URLValidator struct{}

func (URLValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		u, err := url.Parse(l.Value())
		if err != nil || u.Scheme == "" || u.Host == "" {
			messages.AddError(KeyURLInvalid, l.Value(), c.Field)
		}
	}
	return messages
}

const maxLabelLength = 255

type LabelValidator struct{}

func (LabelValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	for _, l := range Values(c.Operand) {
		value := l.Value()
		if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
			messages.AddError(KeyLabelWhitespace, value)
		}
		if utf8.RuneCountInString(value) > maxLabelLength {
			messages.AddError(KeyLabelTooLong, value)
		}
	}
	return messages
}

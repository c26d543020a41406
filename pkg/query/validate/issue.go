/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*-\d+$`)

// IssueValidator checks issue keys and ids. With equality operators the
// issue must exist and be visible; with relational operators only the
// key's project has to exist, since the comparison is by key order.
type IssueValidator struct {
	services *Services
}

func (v *IssueValidator) Validate(ctx context.Context, user *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()
	relational := clause.RelationalOperators.Contains(c.Operator)

	for _, l := range Values(c.Operand) {
		if !l.IsInt {
			if id, err := strconv.ParseInt(l.Str, 10, 64); err == nil {
				l = Literal{Int: id, IsInt: true}
			} else if !issueKeyPattern.MatchString(l.Str) {
				messages.AddError(KeyIssueKeyInvalid, l.Value(), c.Field)
				continue
			}
		}

		if relational {
			if !l.IsInt {
				v.checkProject(ctx, messages, c.Field, l.Str)
			}
			continue
		}

		_, visible, err := v.services.findIssue(ctx, user, l)
		if err != nil {
			v.services.lookupFailed(messages, err, c.Field, l.Value())
			return messages
		}
		if !visible {
			messages.AddError(KeyIssueNotFound, l.Value(), c.Field)
		}
	}
	return messages
}

func (v *IssueValidator) checkProject(ctx context.Context, messages *message.Set, field, key string) {
	projects, err := v.services.Catalog.Projects(ctx)
	if err != nil {
		v.services.lookupFailed(messages, err, field, key)
		return
	}

	projectKey := key[:strings.LastIndex(key, "-")]
	for _, p := range projects {
		if catalog.EqualFold(p.Key, projectKey) {
			return
		}
	}
	messages.AddError(KeyIssueProjectNotFound, key, field)
}

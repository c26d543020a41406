/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"testing"

	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/stretchr/testify/assert"
)

func msg(key string, args ...string) string {
	return message.Message{Key: key, Args: args}.String()
}

func term(field string, op clause.Operator, operand clause.Operand) *clause.TerminalClause {
	return clause.Terminal(field, op, operand)
}

func str(s string) clause.SingleValueOperand {
	return clause.StringOperand(s)
}

type validationCase struct {
	name     string
	user     string
	where    clause.Clause
	errors   []string
	warnings []string
}

func runCases(t *testing.T, tests []validationCase) {
	f := newFixture(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := f.validate(t, tc.user, tc.where)
			assert.Equal(t, tc.errors, strs(set.Errors()), "errors")
			assert.Equal(t, tc.warnings, strs(set.Warnings()), "warnings")
		})
	}
}

func TestOperatorUsage(t *testing.T) {
	runCases(t, []validationCase{
		{name: "is needs empty", user: "fred", where: term("assignee", clause.OpIs, str("fred")),
			errors: []string{msg(KeyIsRequiresEmpty, "is", "assignee")}},
		{name: "in needs list", user: "fred", where: term("assignee", clause.OpIn, str("fred")),
			errors: []string{msg(KeyListRequiresList, "in", "assignee")}},
		{name: "equals rejects list", user: "fred", where: term("assignee", clause.OpEquals, clause.Strings("fred", "mary")),
			errors: []string{msg(KeySingleRequiresOne, "=", "assignee")}},
		{name: "like rejects empty", user: "fred", where: term("assignee", clause.OpLike, clause.EmptyOperand{}),
			errors: []string{msg(KeyEmptyNotSupported, "~", "assignee")}},
		{name: "empty list", user: "fred", where: term("assignee", clause.OpIn, clause.MultiValueOperand{}),
			errors: []string{msg(KeyListEmpty, "in", "assignee")}},
		{name: "equals rejects list function", user: "fred", where: term("assignee", clause.OpEquals, clause.Function("membersOf", "developers")),
			errors: []string{msg(KeySingleRequiresOne, "=", "assignee")}},
		{name: "in takes list function", user: "fred", where: term("assignee", clause.OpIn, clause.Function("membersOf", "developers"))},
		{name: "is empty", user: "fred", where: term("assignee", clause.OpIs, clause.EmptyOperand{})},
		{name: "empty inside list", user: "fred", where: term("assignee", clause.OpIn, clause.MultiValueOperand{Values: []clause.Operand{str("fred"), clause.EmptyOperand{}}})},
	})
}

func TestFunctions(t *testing.T) {
	runCases(t, []validationCase{
		{name: "current user", user: "fred", where: term("assignee", clause.OpEquals, clause.Function("currentUser"))},
		{name: "unknown", user: "fred", where: term("assignee", clause.OpEquals, clause.Function("nosuch")),
			errors: []string{msg(KeyFunctionNotExist, "nosuch")}},
		{name: "missing argument", user: "fred", where: term("assignee", clause.OpIn, clause.Function("membersOf")),
			errors: []string{msg(KeyFunctionArgCount, "membersOf", "1", "0")}},
		{name: "unknown group", user: "fred", where: term("assignee", clause.OpIn, clause.Function("membersOf", "nobody")),
			errors: []string{msg(KeyFunctionArgInvalid, "membersOf", "nobody")}},
		{name: "date function", user: "fred", where: term("created", clause.OpGreaterThan, clause.Function("now"))},
		{name: "incompatible", user: "fred", where: term("project", clause.OpEquals, clause.Function("now")),
			errors: []string{msg(KeyFunctionIncompat, "now", "project")}},
		{name: "anonymous last login", where: term("created", clause.OpGreaterThan, clause.Function("lastLogin")),
			errors: []string{msg(KeyFunctionAnonymous, "lastLogin")}},
		{name: "increment", user: "fred", where: term("created", clause.OpGreaterThan, clause.Function("startOfWeek", "-1"))},
		{name: "bad increment", user: "fred", where: term("created", clause.OpGreaterThan, clause.Function("startOfDay", "x")),
			errors: []string{msg(KeyFunctionArgInvalid, "startOfDay", "x")}},
		{name: "released versions of hidden project", user: "fred", where: term("fixVersion", clause.OpIn, clause.Function("releasedVersions", "SEC")),
			errors: []string{msg(KeyFunctionArgInvalid, "releasedVersions", "SEC")}},
		{name: "watched issues while watching is off", user: "fred", where: term("issue", clause.OpIn, clause.Function("watchedIssues")),
			errors: []string{msg(KeyWatchesDisabled, "issue")}},
		{name: "projects lead by anonymous", where: term("project", clause.OpIn, clause.Function("projectsLeadByUser")),
			errors: []string{msg(KeyFunctionAnonymous, "projectsLeadByUser")}},
		{name: "projects lead by named user", where: term("project", clause.OpIn, clause.Function("projectsLeadByUser", "fred"))},
		{name: "linked issues", user: "fred", where: term("issue", clause.OpIn, clause.Function("linkedIssues", "TEST-1"))},
		{name: "linked hidden issue", user: "fred", where: term("issue", clause.OpIn, clause.Function("linkedIssues", "SEC-1")),
			errors: []string{msg(KeyFunctionArgInvalid, "linkedIssues", "SEC-1")}},
	})
}

func TestDuplicateValues(t *testing.T) {
	runCases(t, []validationCase{
		{name: "case folded", user: "fred", where: term("priority", clause.OpIn, clause.Strings("High", "high")),
			warnings: []string{msg(KeyDuplicateValue, "high", "priority")}},
	})
}

func TestEntityFields(t *testing.T) {
	runCases(t, []validationCase{
		{name: "project", user: "fred", where: term("project", clause.OpEquals, str("TEST"))},
		{name: "project by name", user: "fred", where: term("PROJECT", clause.OpEquals, str("test project"))},
		{name: "hidden project", user: "fred", where: term("project", clause.OpEquals, str("SEC")),
			errors: []string{msg(KeyNoValueForName, "project", "SEC")}},
		{name: "admin sees project", user: "admin", where: term("project", clause.OpEquals, str("SEC"))},
		{name: "anonymous", where: term("project", clause.OpEquals, str("PUB")),
			errors: []string{msg(KeyNoValueForName, "project", "PUB")}},
		{name: "hidden project by id", user: "fred", where: term("project", clause.OpIn, clause.MultiValueOperand{Values: []clause.Operand{str("TEST"), clause.IntOperand(10001)}}),
			errors: []string{msg(KeyNoValueForID, "project", "10001")}},
		{name: "no such field", user: "fred", where: term("nosuch", clause.OpEquals, str("x")),
			errors: []string{msg(KeyNoSuchField, "nosuch")}},
		{name: "unsupported operator", user: "fred", where: term("status", clause.OpLike, str("Open")),
			errors: []string{msg(KeyOperatorNotSupported, "~", "status")}},
		{name: "unresolved", user: "fred", where: term("resolution", clause.OpEquals, str("Unresolved"))},
		{name: "unknown resolution", user: "fred", where: term("resolution", clause.OpEquals, str("Nope")),
			errors: []string{msg(KeyNoValueForName, "resolution", "Nope")}},
		{name: "version of hidden project", user: "fred", where: term("fixVersion", clause.OpEquals, str("S1")),
			errors: []string{msg(KeyNoValueForName, "fixVersion", "S1")}},
		{name: "version", user: "fred", where: term("fixVersion", clause.OpLessThan, str("2.0"))},
		{name: "component of visible project", user: "admin", where: term("component", clause.OpEquals, str("Vault"))},
		{name: "hidden level", user: "fred", where: term("level", clause.OpEquals, str("Admins")),
			errors: []string{msg(KeyNoValueForName, "level", "Admins")}},
		{name: "level member", user: "admin", where: term("level", clause.OpEquals, str("Admins"))},
		{name: "status category", user: "fred", where: term("statusCategory", clause.OpEquals, str("in progress"))},
		{name: "status category id", user: "fred", where: term("statusCategory", clause.OpEquals, clause.IntOperand(4)),
			errors: []string{msg(KeyNoValueForID, "statusCategory", "4")}},
		{name: "category", user: "fred", where: term("category", clause.OpEquals, str("External"))},
		{name: "issue type alias", user: "fred", where: term("type", clause.OpEquals, str("Bug"))},
	})
}

func TestUserFields(t *testing.T) {
	runCases(t, []validationCase{
		{name: "by email", user: "fred", where: term("assignee", clause.OpEquals, str("mary@example.com"))},
		{name: "by display name", user: "fred", where: term("reporter", clause.OpEquals, str("Bob Builder"))},
		{name: "unknown", user: "fred", where: term("voter", clause.OpEquals, str("nobody")),
			errors: []string{msg(KeyNoValueForName, "voter", "nobody")}},
		{name: "watching disabled", user: "fred", where: term("watcher", clause.OpEquals, str("fred")),
			errors: []string{msg(KeyWatchesDisabled, "watcher")}},
		{name: "attachments disabled", user: "fred", where: term("attachments", clause.OpIs, clause.EmptyOperand{}),
			errors: []string{msg(KeyAttachmentsDisabled, "attachments")}},
	})
}

func TestValueFormats(t *testing.T) {
	runCases(t, []validationCase{
		{name: "date", user: "fred", where: term("created", clause.OpEquals, str("2024/01/02"))},
		{name: "date time", user: "fred", where: term("updated", clause.OpGreaterThan, str("2024-01-02 10:30"))},
		{name: "relative date", user: "fred", where: term("created", clause.OpGreaterThan, str("-5d"))},
		{name: "epoch millis", user: "fred", where: term("created", clause.OpGreaterThan, clause.IntOperand(1700000000000))},
		{name: "bad date", user: "fred", where: term("created", clause.OpEquals, str("yesterday")),
			errors: []string{msg(KeyDateInvalid, "yesterday", "created")}},
		{name: "created is never empty", user: "fred", where: term("created", clause.OpIs, clause.EmptyOperand{}),
			errors: []string{msg(KeyOperatorNotSupported, "is", "created")}},
		{name: "due has no time", user: "fred", where: term("due", clause.OpEquals, str("2024-01-02 10:00")),
			errors: []string{msg(KeyLocalDateInvalid, "2024-01-02 10:00", "due")}},
		{name: "duration", user: "fred", where: term("originalEstimate", clause.OpGreaterThan, str("4d 3h"))},
		{name: "bad duration", user: "fred", where: term("timeSpent", clause.OpEquals, str("soon")),
			errors: []string{msg(KeyDurationInvalid, "soon", "timeSpent")}},
		{name: "negative votes", user: "fred", where: term("votes", clause.OpEquals, clause.IntOperand(-1)),
			errors: []string{msg(KeyPositiveInteger, "votes", "-1")}},
		{name: "workratio", user: "fred", where: term("workratio", clause.OpGreaterThan, str("50"))},
		{name: "label", user: "fred", where: term("labels", clause.OpEquals, str("backend"))},
		{name: "label with space", user: "fred", where: term("labels", clause.OpEquals, str("two words")),
			errors: []string{msg(KeyLabelWhitespace, "two words")}},
	})
}

func TestIssueFields(t *testing.T) {
	runCases(t, []validationCase{
		{name: "visible", user: "fred", where: term("issue", clause.OpEquals, str("TEST-1"))},
		{name: "by id", user: "fred", where: term("id", clause.OpEquals, clause.IntOperand(2))},
		{name: "security level", user: "fred", where: term("issue", clause.OpEquals, str("TEST-3")),
			errors: []string{msg(KeyIssueNotFound, "TEST-3", "issue")}},
		{name: "hidden project", user: "fred", where: term("key", clause.OpEquals, str("SEC-1")),
			errors: []string{msg(KeyIssueNotFound, "SEC-1", "key")}},
		{name: "missing id", user: "fred", where: term("issue", clause.OpEquals, clause.IntOperand(99)),
			errors: []string{msg(KeyIssueNotFound, "99", "issue")}},
		{name: "bad key", user: "fred", where: term("issue", clause.OpEquals, str("bad key")),
			errors: []string{msg(KeyIssueKeyInvalid, "bad key", "issue")}},
		{name: "relational", user: "fred", where: term("issue", clause.OpGreaterThan, str("TEST-100"))},
		{name: "relational unknown project", user: "fred", where: term("issue", clause.OpGreaterThan, str("NOPE-1")),
			errors: []string{msg(KeyIssueProjectNotFound, "NOPE-1", "issue")}},
		{name: "parent", user: "fred", where: term("parent", clause.OpEquals, str("TEST-1"))},
	})
}

func TestTextFields(t *testing.T) {
	runCases(t, []validationCase{
		{name: "plain", user: "fred", where: term("summary", clause.OpLike, str("login fails"))},
		{name: "empty", user: "fred", where: term("summary", clause.OpLike, str("")),
			errors: []string{msg(KeyTextEmpty, "summary")}},
		{name: "leading wildcard", user: "fred", where: term("description", clause.OpLike, str("*foo")),
			errors: []string{msg(KeyTextLeadingWildcard, "*foo", "description")}},
		{name: "unbalanced", user: "fred", where: term("comment", clause.OpNotLike, str("(foo")),
			errors: []string{msg(KeyTextBadSyntax, "(foo", "comment")}},
		{name: "quoted paren", user: "fred", where: term("text", clause.OpLike, str(`"(foo"`))},
		{name: "stop words", user: "fred", where: term("summary", clause.OpLike, str("the and")),
			warnings: []string{msg(KeyTextStopWords, "the and", "summary")}},
		{name: "text is contains only", user: "fred", where: term("text", clause.OpNotLike, str("foo")),
			errors: []string{msg(KeyOperatorNotSupported, "!~", "text")}},
	})
}

func TestSavedFilters(t *testing.T) {
	runCases(t, []validationCase{
		{name: "shared filter", user: "fred", where: term("filter", clause.OpEquals, str("Team"))},
		{name: "unknown", user: "fred", where: term("filter", clause.OpEquals, str("Nope")),
			errors: []string{msg(KeyNoValueForName, "filter", "Nope")}},
		{name: "not shared", user: "mary", where: term("filter", clause.OpEquals, clause.IntOperand(100)),
			errors: []string{msg(KeyNoValueForID, "filter", "100")}},
		{name: "cycle", user: "fred", where: term("request", clause.OpEquals, clause.IntOperand(103)),
			errors: []string{msg(KeyFilterCyclical, "Loop A")}},
	})
}

func TestCustomFields(t *testing.T) {
	runCases(t, []validationCase{
		{name: "number by id", user: "fred", where: term("cf[10010]", clause.OpEquals, str("abc")),
			errors: []string{msg(KeyNumberInvalid, "abc", "cf[10010]")}},
		{name: "number by name", user: "fred", where: term("story points", clause.OpGreaterThan, clause.IntOperand(5))},
		{name: "select", user: "fred", where: term("Environment Type", clause.OpEquals, str("Prod"))},
		{name: "unknown option", user: "fred", where: term("Environment Type", clause.OpEquals, str("QA")),
			errors: []string{msg(KeyNoValueForName, "Environment Type", "QA")}},
		{name: "multiselect", user: "fred", where: term("Platforms", clause.OpIn, clause.Strings("Linux", "macOS"))},
		{name: "cascade", user: "fred", where: term("Region", clause.OpIn, clause.Function("cascadeOption", "EMEA", "UK"))},
		{name: "cascade none", user: "fred", where: term("Region", clause.OpIn, clause.Function("cascadeOption", "APAC", "none"))},
		{name: "cascade child of other parent", user: "fred", where: term("Region", clause.OpIn, clause.Function("cascadeOption", "EMEA", "JP")),
			errors: []string{msg(KeyCascadeInvalid, "Region")}},
		{name: "cascade plain child", user: "fred", where: term("Region", clause.OpEquals, str("JP"))},
		{name: "restricted field", user: "fred", where: term("Secret Score", clause.OpEquals, clause.IntOperand(1)),
			errors: []string{msg(KeyNoSuchField, "Secret Score")}},
		{name: "restricted field visible", user: "admin", where: term("Secret Score", clause.OpEquals, clause.IntOperand(1))},
		{name: "url", user: "fred", where: term("Website", clause.OpEquals, str("https://example.com/x"))},
		{name: "bad url", user: "fred", where: term("Website", clause.OpEquals, str("example")),
			errors: []string{msg(KeyURLInvalid, "example", "Website")}},
		{name: "group", user: "fred", where: term("Approvers", clause.OpEquals, str("nobody")),
			errors: []string{msg(KeyNoValueForName, "Approvers", "nobody")}},
		{name: "user by display name", user: "fred", where: term("Reviewer", clause.OpEquals, str("Fred Flintstone"))},
		{name: "date field", user: "fred", where: term("Go Live", clause.OpLessThan, clause.Function("endOfMonth"))},
		{name: "text field", user: "fred", where: term("Notes", clause.OpEquals, str("x")),
			errors: []string{msg(KeyOperatorNotSupported, "=", "Notes")}},
	})
}

func TestHistoryClauses(t *testing.T) {
	was := func(field string, op clause.Operator, operand clause.Operand, p clause.HistoryPredicate) *clause.WasClause {
		return &clause.WasClause{Field: field, Operator: op, Operand: operand, Predicate: p}
	}
	changed := func(field string, p clause.HistoryPredicate) *clause.ChangedClause {
		return &clause.ChangedClause{Field: field, Operator: clause.OpChanged, Predicate: p}
	}

	runCases(t, []validationCase{
		{name: "current value", user: "fred", where: was("status", clause.OpWas, str("Open"), nil)},
		{name: "historic value", user: "fred", where: was("status", clause.OpWas, str("Reopened"), nil)},
		{name: "historic assignee", user: "fred", where: was("assignee", clause.OpWasIn, clause.Strings("fred", "oldtimer"), nil)},
		{name: "never existed", user: "fred", where: was("status", clause.OpWas, str("Nope"), nil),
			errors: []string{msg(KeyHistoryValueNotFound, "Nope", "status")}},
		{name: "no history", user: "fred", where: was("summary", clause.OpWas, str("x"), nil),
			errors: []string{msg(KeyHistoryNotSupported, "summary")}},
		{name: "no such field", user: "fred", where: was("nosuch", clause.OpWas, str("x"), nil),
			errors: []string{msg(KeyNoSuchField, "nosuch")}},
		{name: "was in needs list", user: "fred", where: was("status", clause.OpWasIn, str("Open"), nil),
			errors: []string{msg(KeyListRequiresList, "was in", "status")}},
		{name: "was empty", user: "fred", where: was("assignee", clause.OpWasNot, clause.EmptyOperand{}, nil)},
		{name: "during", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpDuring, clause.Strings("2024/01/01", "2024/02/01")))},
		{name: "during one value", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpDuring, str("2024/01/01"))),
			errors: []string{msg(KeyDuringTwoValues, "status")}},
		{name: "after list", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpAfter, clause.Strings("2024/01/01", "2024/02/01"))),
			errors: []string{msg(KeyPredicateSingleValue, "after", "status")}},
		{name: "after bad date", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpAfter, str("whenever"))),
			errors: []string{msg(KeyDateInvalid, "whenever", "status")}},
		{name: "before function", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpBefore, clause.Function("startOfWeek")))},
		{name: "by unknown", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpBy, str("nobody"))),
			errors: []string{msg(KeyNoValueForName, "by", "nobody")}},
		{name: "from in was", user: "fred", where: was("status", clause.OpWas, str("Open"), clause.Predicate(clause.OpFrom, str("Open"))),
			errors: []string{msg(KeyPredicateNotSupported, "from", "status")}},
		{name: "changed", user: "fred", where: changed("status", &clause.AndHistoryPredicate{Predicates: []clause.HistoryPredicate{
			clause.Predicate(clause.OpFrom, str("Reopened")),
			clause.Predicate(clause.OpTo, str("In Progress")),
			clause.Predicate(clause.OpBy, clause.Function("currentUser")),
		}})},
		{name: "changed from unknown", user: "fred", where: changed("status", clause.Predicate(clause.OpFrom, str("Nope"))),
			errors: []string{msg(KeyHistoryValueNotFound, "Nope", "status")}},
		{name: "changed to list", user: "fred", where: changed("priority", clause.Predicate(clause.OpTo, clause.Strings("High", "Low"))),
			errors: []string{msg(KeyPredicateSingleValue, "to", "priority")}},
		{name: "changed wrong operator", user: "fred", where: &clause.ChangedClause{Field: "status", Operator: clause.OpWas},
			errors: []string{msg(KeyOperatorNotSupported, "was", "status")}},
	})
}

func TestVisitorAggregates(t *testing.T) {
	runCases(t, []validationCase{
		{name: "every leaf", user: "fred", where: clause.Or(
			term("project", clause.OpEquals, str("SEC")),
			clause.Not(term("nosuch", clause.OpEquals, str("x"))),
			clause.And(term("status", clause.OpEquals, str("Open")), term("priority", clause.OpIn, clause.Strings("Low", "low"))),
		),
			errors:   []string{msg(KeyNoValueForName, "project", "SEC"), msg(KeyNoSuchField, "nosuch")},
			warnings: []string{msg(KeyDuplicateValue, "low", "priority")}},
	})
}

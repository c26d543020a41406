/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

// Call is one use of a function in a clause.
type Call struct {
	User  *catalog.User
	Field string
	Name  string
	Args  []string
}

// Function describes a JQL function. MaxArgs < 0 means no upper bound.
type Function struct {
	Name     string
	DataType DataType
	List     bool
	MinArgs  int
	MaxArgs  int
	LoggedIn bool
	check    func(ctx context.Context, s *Services, call Call) *message.Set
}

// Signature renders the accepted argument counts, e.g. "1", "0-1" or
// "at least 0".
func (f *Function) Signature() string {
	switch {
	case f.MaxArgs < 0:
		return "at least " + strconv.Itoa(f.MinArgs)
	case f.MinArgs == f.MaxArgs:
		return strconv.Itoa(f.MinArgs)
	}
	return strconv.Itoa(f.MinArgs) + "-" + strconv.Itoa(f.MaxArgs)
}

type FunctionRegistry struct {
	services  *Services
	functions map[string]*Function
}

func NewFunctionRegistry(s *Services) *FunctionRegistry {
	r := &FunctionRegistry{services: s, functions: make(map[string]*Function)}
	for _, f := range builtinFunctions() {
		r.Register(f)
	}
	return r
}

// Register adds f, replacing any function of the same name.
func (r *FunctionRegistry) Register(f *Function) {
	r.functions[catalog.Fold(f.Name)] = f
}

func (r *FunctionRegistry) Lookup(name string) (*Function, bool) {
	f, ok := r.functions[catalog.Fold(name)]
	return f, ok
}

// All returns the registered functions sorted by name.
func (r *FunctionRegistry) All() []*Function {
	ret := make([]*Function, 0, len(r.functions))
	for _, f := range r.functions {
		ret = append(ret, f)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// Validate checks one function operand used against field.
func (r *FunctionRegistry) Validate(ctx context.Context, user *catalog.User, field *Field, clauseName string, fn clause.FunctionOperand) *message.Set {
	messages := message.New()

	f, ok := r.Lookup(fn.Name)
	if !ok {
		messages.AddError(KeyFunctionNotExist, fn.Name)
		return messages
	}

	if len(fn.Args) < f.MinArgs || (f.MaxArgs >= 0 && len(fn.Args) > f.MaxArgs) {
		messages.AddError(KeyFunctionArgCount, f.Name, f.Signature(), strconv.Itoa(len(fn.Args)))
		return messages
	}

	if field.DataType != TypeAny && f.DataType != field.DataType {
		messages.AddError(KeyFunctionIncompat, f.Name, clauseName)
		return messages
	}

	if f.LoggedIn && user == nil {
		messages.AddError(KeyFunctionAnonymous, f.Name)
		return messages
	}

	if f.check != nil {
		messages.AddSet(f.check(ctx, r.services, Call{User: user, Field: clauseName, Name: f.Name, Args: fn.Args}))
	}
	return messages
}

var incrementPattern = regexp.MustCompile(`^[-+]?\d+[wdhmMy]?$`)

func builtinFunctions() []*Function {
	fns := []*Function{
		{Name: "currentUser", DataType: TypeUser},
		{Name: "membersOf", DataType: TypeUser, List: true, MinArgs: 1, MaxArgs: 1, check: checkMembersOf},
		{Name: "now", DataType: TypeDate},
		{Name: "currentLogin", DataType: TypeDate, LoggedIn: true},
		{Name: "lastLogin", DataType: TypeDate, LoggedIn: true},
		{Name: "releasedVersions", DataType: TypeVersion, List: true, MaxArgs: -1, check: checkProjectArgs},
		{Name: "unreleasedVersions", DataType: TypeVersion, List: true, MaxArgs: -1, check: checkProjectArgs},
		{Name: "earliestUnreleasedVersion", DataType: TypeVersion, MinArgs: 1, MaxArgs: 1, check: checkProjectArgs},
		{Name: "latestReleasedVersion", DataType: TypeVersion, MinArgs: 1, MaxArgs: 1, check: checkProjectArgs},
		{Name: "issueHistory", DataType: TypeIssue, List: true, LoggedIn: true},
		{Name: "votedIssues", DataType: TypeIssue, List: true, LoggedIn: true, check: requireSetting(KeyVotesDisabled, func(s catalog.Settings) bool { return s.Voting })},
		{Name: "watchedIssues", DataType: TypeIssue, List: true, LoggedIn: true, check: requireSetting(KeyWatchesDisabled, func(s catalog.Settings) bool { return s.Watching })},
		{Name: "linkedIssues", DataType: TypeIssue, List: true, MinArgs: 1, MaxArgs: 2, check: checkLinkedIssues},
		{Name: "standardIssueTypes", DataType: TypeIssueType, List: true},
		{Name: "subTaskIssueTypes", DataType: TypeIssueType, List: true, check: requireSetting(KeySubtasksDisabled, func(s catalog.Settings) bool { return s.Subtasks })},
		{Name: "projectsLeadByUser", DataType: TypeProject, List: true, MaxArgs: 1, check: checkLeadUser},
		{Name: "componentsLeadByUser", DataType: TypeComponent, List: true, MaxArgs: 1, check: checkLeadUser},
		{Name: "cascadeOption", DataType: TypeCascadingOption, List: true, MinArgs: 1, MaxArgs: 2},
	}

	for _, unit := range []string{"Day", "Week", "Month", "Year"} {
		fns = append(fns,
			&Function{Name: "startOf" + unit, DataType: TypeDate, MaxArgs: 1, check: checkIncrement},
			&Function{Name: "endOf" + unit, DataType: TypeDate, MaxArgs: 1, check: checkIncrement},
		)
	}
	return fns
}

func checkMembersOf(ctx context.Context, s *Services, call Call) *message.Set {
	messages := message.New()
	_, err := s.Catalog.Group(ctx, call.Args[0])
	switch {
	case isNotFound(err):
		messages.AddError(KeyFunctionArgInvalid, call.Name, call.Args[0])
	case err != nil:
		s.lookupFailed(messages, err, call.Field, call.Args[0])
	}
	return messages
}

func checkIncrement(_ context.Context, _ *Services, call Call) *message.Set {
	messages := message.New()
	for _, arg := range call.Args {
		if !incrementPattern.MatchString(arg) {
			messages.AddError(KeyFunctionArgInvalid, call.Name, arg)
		}
	}
	return messages
}

// checkProjectArgs requires every argument to name a browsable project.
func checkProjectArgs(ctx context.Context, s *Services, call Call) *message.Set {
	messages := message.New()
	if len(call.Args) == 0 {
		return messages
	}

	projects, err := s.browsableProjects(ctx, call.User)
	if err != nil {
		s.lookupFailed(messages, err, call.Field, call.Name)
		return messages
	}
	for _, arg := range call.Args {
		if len(catalog.Find(projects, arg, false)) == 0 {
			messages.AddError(KeyFunctionArgInvalid, call.Name, arg)
		}
	}
	return messages
}

func checkLinkedIssues(ctx context.Context, s *Services, call Call) *message.Set {
	messages := message.New()
	l := Literal{Str: call.Args[0]}
	if id, err := strconv.ParseInt(call.Args[0], 10, 64); err == nil {
		l = Literal{Int: id, IsInt: true}
	}

	_, visible, err := s.findIssue(ctx, call.User, l)
	if err != nil {
		s.lookupFailed(messages, err, call.Field, call.Args[0])
		return messages
	}
	if !visible {
		messages.AddError(KeyFunctionArgInvalid, call.Name, call.Args[0])
	}
	return messages
}

// checkLeadUser validates the optional user argument. Without one the
// function refers to the searcher, who must be logged in.
func checkLeadUser(ctx context.Context, s *Services, call Call) *message.Set {
	messages := message.New()
	if len(call.Args) == 0 {
		if call.User == nil {
			messages.AddError(KeyFunctionAnonymous, call.Name)
		}
		return messages
	}

	u, err := s.findUser(ctx, call.Args[0])
	if err != nil {
		s.lookupFailed(messages, err, call.Field, call.Args[0])
		return messages
	}
	if u == nil {
		messages.AddError(KeyFunctionArgInvalid, call.Name, call.Args[0])
	}
	return messages
}

func requireSetting(key string, enabled func(catalog.Settings) bool) func(context.Context, *Services, Call) *message.Set {
	return func(ctx context.Context, s *Services, call Call) *message.Set {
		messages := message.New()
		settings, err := s.settings(ctx)
		if err != nil {
			s.lookupFailed(messages, err, call.Field, call.Name)
			return messages
		}
		if !enabled(settings) {
			messages.AddError(key, call.Field)
		}
		return messages
	}
}

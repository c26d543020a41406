/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// Permissions answers visibility questions for a searcher. A nil *User is
// the anonymous searcher.
type Permissions struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

func NewPermissions() (*Permissions, error) {
	env, err := cel.NewEnv(
		cel.Variable("user", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("project", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating permission environment")
	}
	return &Permissions{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks a browse rule and caches its program.
func (p *Permissions) Compile(rule string) (cel.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prg, ok := p.programs[rule]; ok {
		return prg, nil
	}

	ast, issues := p.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "compiling browse rule %q", rule)
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, errors.Errorf("browse rule %q must evaluate to a bool, not %s", rule, out)
	}

	prg, err := p.env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "building browse rule %q", rule)
	}
	p.programs[rule] = prg
	return prg, nil
}

func userVars(u *User) map[string]interface{} {
	if u == nil {
		return map[string]interface{}{
			"name":      "",
			"groups":    []string{},
			"active":    false,
			"anonymous": true,
		}
	}
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return map[string]interface{}{
		"name":      u.Name,
		"groups":    groups,
		"active":    u.Active,
		"anonymous": false,
	}
}

func projectVars(p *Project) map[string]interface{} {
	return map[string]interface{}{
		"id":       p.ID,
		"key":      p.Key,
		"name":     p.Name,
		"category": p.Category,
		"lead":     p.Lead,
	}
}

// CanBrowse evaluates the project's browse rule for u.
func (p *Permissions) CanBrowse(u *User, project *Project) (bool, error) {
	if project.BrowseRule == "" {
		return true, nil
	}

	prg, err := p.Compile(project.BrowseRule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"user":    userVars(u),
		"project": projectVars(project),
	})
	if err != nil {
		return false, errors.Wrapf(err, "evaluating browse rule of %s", project.Key)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("browse rule of %s returned %T", project.Key, out.Value())
	}
	return allowed, nil
}

// BrowsableProjects filters projects down to those u can browse.
func (p *Permissions) BrowsableProjects(u *User, projects []Project) ([]Project, error) {
	var ret []Project
	for i := range projects {
		ok, err := p.CanBrowse(u, &projects[i])
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, projects[i])
		}
	}
	return ret, nil
}

func memberOf(u *User, names []string) bool {
	if u == nil {
		return false
	}
	for _, n := range names {
		if EqualFold(n, u.Name) {
			return true
		}
		for _, g := range u.Groups {
			if EqualFold(n, g) {
				return true
			}
		}
	}
	return false
}

// CanSeeLevel reports whether u is a member of the security level, either
// by name or through a group.
func (p *Permissions) CanSeeLevel(u *User, level *SecurityLevel) bool {
	return memberOf(u, level.Members)
}

// CanSeeFilter reports whether u owns the filter or it is shared with u.
func (p *Permissions) CanSeeFilter(u *User, f *SavedFilter) bool {
	for _, s := range f.SharedWith {
		if s == "*" {
			return true
		}
	}
	if u == nil {
		return false
	}
	return EqualFold(f.Owner, u.Name) || memberOf(u, f.SharedWith)
}

// CanSeeField reports whether a custom field is visible to u: global fields
// always are, restricted ones when u can browse one of their projects.
func (p *Permissions) CanSeeField(u *User, field *CustomField, projects []Project) (bool, error) {
	if field.Global() {
		return true, nil
	}
	for i := range projects {
		for _, id := range field.ProjectIDs {
			if projects[i].ID != id {
				continue
			}
			ok, err := p.CanBrowse(u, &projects[i])
			if err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}

// CanSeeIssue reports whether u can browse the issue's project and, if the
// issue has a security level, is a member of it.
func (p *Permissions) CanSeeIssue(u *User, issue *Issue, projects []Project, levels []SecurityLevel) (bool, error) {
	var project *Project
	for i := range projects {
		if projects[i].ID == issue.ProjectID {
			project = &projects[i]
			break
		}
	}
	if project == nil {
		return false, nil
	}

	ok, err := p.CanBrowse(u, project)
	if err != nil || !ok {
		return false, err
	}

	if issue.SecurityLevelID == 0 {
		return true, nil
	}
	for i := range levels {
		if levels[i].ID == issue.SecurityLevelID {
			return p.CanSeeLevel(u, &levels[i]), nil
		}
	}
	return false, nil
}

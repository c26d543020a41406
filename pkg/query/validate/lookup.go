/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/pkg/errors"
)

func (s *Services) browsableProjects(ctx context.Context, user *catalog.User) ([]catalog.Project, error) {
	projects, err := s.Catalog.Projects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}
	return s.Permissions.BrowsableProjects(user, projects)
}

func projectIDs(projects []catalog.Project) map[int64]bool {
	ids := make(map[int64]bool, len(projects))
	for _, p := range projects {
		ids[p.ID] = true
	}
	return ids
}

// visibleVersions returns the versions of projects the user can browse.
func (s *Services) visibleVersions(ctx context.Context, user *catalog.User) ([]catalog.Version, error) {
	projects, err := s.browsableProjects(ctx, user)
	if err != nil {
		return nil, err
	}
	versions, err := s.Catalog.Versions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing versions")
	}

	ids := projectIDs(projects)
	var ret []catalog.Version
	for _, v := range versions {
		if ids[v.ProjectID] {
			ret = append(ret, v)
		}
	}
	return ret, nil
}

func (s *Services) visibleComponents(ctx context.Context, user *catalog.User) ([]catalog.Component, error) {
	projects, err := s.browsableProjects(ctx, user)
	if err != nil {
		return nil, err
	}
	components, err := s.Catalog.Components(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing components")
	}

	ids := projectIDs(projects)
	var ret []catalog.Component
	for _, c := range components {
		if ids[c.ProjectID] {
			ret = append(ret, c)
		}
	}
	return ret, nil
}

func (s *Services) visibleLevels(ctx context.Context, user *catalog.User) ([]catalog.SecurityLevel, error) {
	levels, err := s.Catalog.SecurityLevels(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing security levels")
	}
	var ret []catalog.SecurityLevel
	for i := range levels {
		if s.Permissions.CanSeeLevel(user, &levels[i]) {
			ret = append(ret, levels[i])
		}
	}
	return ret, nil
}

func (s *Services) visibleFilters(ctx context.Context, user *catalog.User) ([]catalog.SavedFilter, error) {
	filters, err := s.Catalog.SavedFilters(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing saved filters")
	}
	var ret []catalog.SavedFilter
	for i := range filters {
		if s.Permissions.CanSeeFilter(user, &filters[i]) {
			ret = append(ret, filters[i])
		}
	}
	return ret, nil
}

// findUser matches value against user names, then email addresses, then
// display names.
func (s *Services) findUser(ctx context.Context, value string) (*catalog.User, error) {
	users, err := s.Catalog.Users(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}

	match := []func(u *catalog.User) string{
		func(u *catalog.User) string { return u.Name },
		func(u *catalog.User) string { return u.Email },
		func(u *catalog.User) string { return u.DisplayName },
	}
	folded := catalog.Fold(value)
	for _, m := range match {
		for i := range users {
			if n := m(&users[i]); n != "" && catalog.Fold(n) == folded {
				return &users[i], nil
			}
		}
	}
	return nil, nil
}

// findIssue resolves an issue key or id and reports whether the user may
// see it. A missing issue is (nil, false, nil).
func (s *Services) findIssue(ctx context.Context, user *catalog.User, l Literal) (*catalog.Issue, bool, error) {
	var (
		issue *catalog.Issue
		err   error
	)
	if l.IsInt {
		issue, err = s.Catalog.IssueByID(ctx, l.Int)
	} else {
		issue, err = s.Catalog.IssueByKey(ctx, l.Str)
	}
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "looking up issue")
	}

	projects, err := s.Catalog.Projects(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "listing projects")
	}
	levels, err := s.Catalog.SecurityLevels(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "listing security levels")
	}
	visible, err := s.Permissions.CanSeeIssue(user, issue, projects, levels)
	if err != nil {
		return nil, false, err
	}
	return issue, visible, nil
}

func (s *Services) settings(ctx context.Context) (catalog.Settings, error) {
	settings, err := s.Catalog.Settings(ctx)
	if err != nil {
		return settings, errors.Wrap(err, "reading settings")
	}
	return settings.WithDefaults(), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound)
}

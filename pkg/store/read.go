/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/pkg/errors"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, s *Store, what, query string, scan func(scanner) (T, error), args ...interface{}) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", what)
	}
	defer rows.Close()

	ret := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning %s", what)
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterating %s", what)
	}
	return ret, nil
}

// queryOne returns catalog.ErrNotFound when no row matches.
func queryOne[T any](ctx context.Context, s *Store, what, query string, scan func(scanner) (T, error), args ...interface{}) (*T, error) {
	item, err := scan(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(catalog.ErrNotFound, "%s %v", what, args)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", what)
	}
	return &item, nil
}

func decodeJSON(column string, v interface{}) error {
	if column == "" {
		return nil
	}
	return json.Unmarshal([]byte(column), v)
}

func (s *Store) Settings(ctx context.Context) (catalog.Settings, error) {
	var st catalog.Settings
	err := s.db.QueryRowContext(ctx, `SELECT time_tracking, voting, watching, subtasks, attachments, hours_per_day, days_per_week FROM settings WHERE id = 1`).
		Scan(&st.TimeTracking, &st.Voting, &st.Watching, &st.Subtasks, &st.Attachments, &st.HoursPerDay, &st.DaysPerWeek)
	if err == sql.ErrNoRows {
		return st.WithDefaults(), nil
	}
	if err != nil {
		return st, errors.Wrap(err, "querying settings")
	}
	return st.WithDefaults(), nil
}

const userColumns = `SELECT name, display_name, email, active, groups_json, last_login, current_login FROM users`

func scanUser(r scanner) (catalog.User, error) {
	var (
		u                    catalog.User
		groups, last, recent string
	)
	if err := r.Scan(&u.Name, &u.DisplayName, &u.Email, &u.Active, &groups, &last, &recent); err != nil {
		return u, err
	}
	u.LastLogin = parseTime(last)
	u.CurrentLogin = parseTime(recent)
	err := decodeJSON(groups, &u.Groups)
	return u, err
}

func (s *Store) Users(ctx context.Context) ([]catalog.User, error) {
	return queryAll(ctx, s, "users", userColumns+` ORDER BY name`, scanUser)
}

func (s *Store) User(ctx context.Context, name string) (*catalog.User, error) {
	return queryOne(ctx, s, "user", userColumns+` WHERE name = ?`, scanUser, name)
}

func scanGroup(r scanner) (catalog.Group, error) {
	var g catalog.Group
	err := r.Scan(&g.Name)
	return g, err
}

func (s *Store) Groups(ctx context.Context) ([]catalog.Group, error) {
	return queryAll(ctx, s, "groups", `SELECT name FROM user_groups ORDER BY name`, scanGroup)
}

func (s *Store) Group(ctx context.Context, name string) (*catalog.Group, error) {
	return queryOne(ctx, s, "group", `SELECT name FROM user_groups WHERE name = ?`, scanGroup, name)
}

func (s *Store) ProjectCategories(ctx context.Context) ([]catalog.ProjectCategory, error) {
	return queryAll(ctx, s, "categories", `SELECT id, name FROM categories ORDER BY id`, func(r scanner) (catalog.ProjectCategory, error) {
		var c catalog.ProjectCategory
		err := r.Scan(&c.ID, &c.Name)
		return c, err
	})
}

func (s *Store) Projects(ctx context.Context) ([]catalog.Project, error) {
	return queryAll(ctx, s, "projects", `SELECT id, project_key, name, category_id, lead, browse_rule FROM projects ORDER BY id`, func(r scanner) (catalog.Project, error) {
		var p catalog.Project
		err := r.Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Lead, &p.BrowseRule)
		return p, err
	})
}

func (s *Store) Versions(ctx context.Context) ([]catalog.Version, error) {
	return queryAll(ctx, s, "versions", `SELECT id, project_id, name, released, archived, sequence FROM versions ORDER BY project_id, sequence, id`, func(r scanner) (catalog.Version, error) {
		var v catalog.Version
		err := r.Scan(&v.ID, &v.ProjectID, &v.Name, &v.Released, &v.Archived, &v.Sequence)
		return v, err
	})
}

func (s *Store) Components(ctx context.Context) ([]catalog.Component, error) {
	return queryAll(ctx, s, "components", `SELECT id, project_id, name, lead FROM components ORDER BY id`, func(r scanner) (catalog.Component, error) {
		var c catalog.Component
		err := r.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Lead)
		return c, err
	})
}

func (s *Store) IssueTypes(ctx context.Context) ([]catalog.IssueType, error) {
	return queryAll(ctx, s, "issue types", `SELECT id, name, subtask FROM issue_types ORDER BY id`, func(r scanner) (catalog.IssueType, error) {
		var t catalog.IssueType
		err := r.Scan(&t.ID, &t.Name, &t.Subtask)
		return t, err
	})
}

func (s *Store) Priorities(ctx context.Context) ([]catalog.Priority, error) {
	return queryAll(ctx, s, "priorities", `SELECT id, name FROM priorities ORDER BY id`, func(r scanner) (catalog.Priority, error) {
		var p catalog.Priority
		err := r.Scan(&p.ID, &p.Name)
		return p, err
	})
}

func (s *Store) Resolutions(ctx context.Context) ([]catalog.Resolution, error) {
	return queryAll(ctx, s, "resolutions", `SELECT id, name FROM resolutions ORDER BY id`, func(r scanner) (catalog.Resolution, error) {
		var res catalog.Resolution
		err := r.Scan(&res.ID, &res.Name)
		return res, err
	})
}

func (s *Store) Statuses(ctx context.Context) ([]catalog.Status, error) {
	return queryAll(ctx, s, "statuses", `SELECT id, name, category FROM statuses ORDER BY id`, func(r scanner) (catalog.Status, error) {
		var st catalog.Status
		err := r.Scan(&st.ID, &st.Name, &st.Category)
		return st, err
	})
}

func (s *Store) SecurityLevels(ctx context.Context) ([]catalog.SecurityLevel, error) {
	return queryAll(ctx, s, "security levels", `SELECT id, name, members_json FROM security_levels ORDER BY id`, func(r scanner) (catalog.SecurityLevel, error) {
		var (
			l       catalog.SecurityLevel
			members string
		)
		if err := r.Scan(&l.ID, &l.Name, &members); err != nil {
			return l, err
		}
		err := decodeJSON(members, &l.Members)
		return l, err
	})
}

func (s *Store) CustomFields(ctx context.Context) ([]catalog.CustomField, error) {
	return queryAll(ctx, s, "custom fields", `SELECT id, name, type, options_json, projects_json FROM custom_fields ORDER BY id`, func(r scanner) (catalog.CustomField, error) {
		var (
			f                 catalog.CustomField
			options, projects string
		)
		if err := r.Scan(&f.ID, &f.Name, &f.Type, &options, &projects); err != nil {
			return f, err
		}
		if err := decodeJSON(options, &f.Options); err != nil {
			return f, err
		}
		err := decodeJSON(projects, &f.ProjectIDs)
		return f, err
	})
}

const filterColumns = `SELECT id, name, owner, shared_with_json, query_yaml FROM filters`

func scanFilter(r scanner) (catalog.SavedFilter, error) {
	var (
		f           catalog.SavedFilter
		shared, doc string
	)
	if err := r.Scan(&f.ID, &f.Name, &f.Owner, &shared, &doc); err != nil {
		return f, err
	}
	if err := decodeJSON(shared, &f.SharedWith); err != nil {
		return f, err
	}
	if doc != "" {
		q, err := clause.ParseDocument([]byte(doc))
		if err != nil {
			return f, err
		}
		f.Query = q
	}
	return f, nil
}

func (s *Store) SavedFilters(ctx context.Context) ([]catalog.SavedFilter, error) {
	return queryAll(ctx, s, "filters", filterColumns+` ORDER BY id`, scanFilter)
}

func (s *Store) SavedFilter(ctx context.Context, id int64) (*catalog.SavedFilter, error) {
	return queryOne(ctx, s, "filter", filterColumns+` WHERE id = ?`, scanFilter, id)
}

const issueColumns = `SELECT id, issue_key, project_id, parent_id, security_level_id FROM issues`

func scanIssue(r scanner) (catalog.Issue, error) {
	var i catalog.Issue
	err := r.Scan(&i.ID, &i.Key, &i.ProjectID, &i.ParentID, &i.SecurityLevelID)
	return i, err
}

func (s *Store) IssueByKey(ctx context.Context, key string) (*catalog.Issue, error) {
	return queryOne(ctx, s, "issue", issueColumns+` WHERE issue_key = ?`, scanIssue, key)
}

func (s *Store) IssueByID(ctx context.Context, id int64) (*catalog.Issue, error) {
	return queryOne(ctx, s, "issue", issueColumns+` WHERE id = ?`, scanIssue, id)
}

func (s *Store) Changes(ctx context.Context) ([]catalog.Change, error) {
	return queryAll(ctx, s, "changes", `SELECT issue_id, field, from_value, to_value, author, at FROM changes ORDER BY id`, func(r scanner) (catalog.Change, error) {
		var (
			c  catalog.Change
			at string
		)
		if err := r.Scan(&c.IssueID, &c.Field, &c.From, &c.To, &c.Author, &at); err != nil {
			return c, err
		}
		c.At = parseTime(at)
		return c, nil
	})
}

func (s *Store) Stats(ctx context.Context) (catalog.Stats, error) {
	var st catalog.Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"users", &st.Users},
		{"user_groups", &st.Groups},
		{"projects", &st.Projects},
		{"versions", &st.Versions},
		{"components", &st.Components},
		{"issues", &st.Issues},
		{"filters", &st.Filters},
		{"custom_fields", &st.CustomFields},
		{"changes", &st.Changes},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return st, errors.Wrapf(err, "counting %s", c.table)
		}
	}
	return st, nil
}

// ValueExisted answers history lookups from the change_values index.
func (s *Store) ValueExisted(ctx context.Context, field, value string) (bool, error) {
	field, ok := history.CanonicalField(field)
	if !ok {
		return false, nil
	}

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM change_values WHERE field = ? AND value = ?`, field, catalog.Fold(value)).Scan(&n)
	if err != nil {
		return false, errors.Wrap(history.ErrUnavailable, err.Error())
	}
	return n > 0, nil
}

var (
	_ catalog.Catalog = (*Store)(nil)
	_ history.Index   = (*Store)(nil)
)

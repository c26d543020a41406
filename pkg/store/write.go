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
	"time"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// tables in dependency order; deleted in reverse.
var tables = []string{
	"settings", "users", "user_groups", "categories", "projects", "versions",
	"components", "issue_types", "priorities", "resolutions", "statuses",
	"security_levels", "issues", "filters", "custom_fields", "changes",
	"change_values",
}

// Import replaces the stored catalog with the snapshot in one transaction.
func (s *Store) Import(ctx context.Context, snap *catalog.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning import")
	}
	defer tx.Rollback()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables[i]); err != nil {
			return errors.Wrapf(err, "clearing %s", tables[i])
		}
	}

	w := &writer{ctx: ctx, tx: tx}
	w.settings(snap.Config)
	for _, u := range snap.UserList {
		w.exec("users", `INSERT INTO users (name, display_name, email, active, groups_json, last_login, current_login) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.Name, u.DisplayName, u.Email, u.Active, w.json(u.Groups), formatTime(u.LastLogin), formatTime(u.CurrentLogin))
	}
	for _, g := range snap.GroupList {
		w.exec("user_groups", `INSERT INTO user_groups (name) VALUES (?)`, g.Name)
	}
	for _, c := range snap.CategoryList {
		w.exec("categories", `INSERT INTO categories (id, name) VALUES (?, ?)`, c.ID, c.Name)
	}
	for _, p := range snap.ProjectList {
		w.exec("projects", `INSERT INTO projects (id, project_key, name, category_id, lead, browse_rule) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Key, p.Name, p.Category, p.Lead, p.BrowseRule)
	}
	for _, v := range snap.VersionList {
		w.exec("versions", `INSERT INTO versions (id, project_id, name, released, archived, sequence) VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.ProjectID, v.Name, v.Released, v.Archived, v.Sequence)
	}
	for _, c := range snap.ComponentList {
		w.exec("components", `INSERT INTO components (id, project_id, name, lead) VALUES (?, ?, ?, ?)`,
			c.ID, c.ProjectID, c.Name, c.Lead)
	}
	for _, t := range snap.IssueTypeList {
		w.exec("issue_types", `INSERT INTO issue_types (id, name, subtask) VALUES (?, ?, ?)`, t.ID, t.Name, t.Subtask)
	}
	for _, p := range snap.PriorityList {
		w.exec("priorities", `INSERT INTO priorities (id, name) VALUES (?, ?)`, p.ID, p.Name)
	}
	for _, r := range snap.ResolutionList {
		w.exec("resolutions", `INSERT INTO resolutions (id, name) VALUES (?, ?)`, r.ID, r.Name)
	}
	for _, st := range snap.StatusList {
		w.exec("statuses", `INSERT INTO statuses (id, name, category) VALUES (?, ?, ?)`, st.ID, st.Name, st.Category)
	}
	for _, l := range snap.SecurityLevelList {
		w.exec("security_levels", `INSERT INTO security_levels (id, name, members_json) VALUES (?, ?, ?)`, l.ID, l.Name, w.json(l.Members))
	}
	for _, i := range snap.IssueList {
		w.exec("issues", `INSERT INTO issues (id, issue_key, project_id, parent_id, security_level_id) VALUES (?, ?, ?, ?, ?)`,
			i.ID, i.Key, i.ProjectID, i.ParentID, i.SecurityLevelID)
	}
	for _, f := range snap.FilterList {
		w.exec("filters", `INSERT INTO filters (id, name, owner, shared_with_json, query_yaml) VALUES (?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Owner, w.json(f.SharedWith), w.yaml(f))
	}
	for _, f := range snap.CustomFieldList {
		w.exec("custom_fields", `INSERT INTO custom_fields (id, name, type, options_json, projects_json) VALUES (?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Type, w.json(f.Options), w.json(f.ProjectIDs))
	}
	for _, c := range snap.ChangeList {
		w.change(c)
	}

	if w.err != nil {
		return w.err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing import")
	}

	stats, _ := snap.Stats(ctx)
	s.log.Info().
		Int("projects", stats.Projects).
		Int("filters", stats.Filters).
		Int("custom_fields", stats.CustomFields).
		Int("changes", stats.Changes).
		Msg("imported catalog")
	return nil
}

// RecordChange appends a change and indexes its values.
func (s *Store) RecordChange(ctx context.Context, c catalog.Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning change")
	}
	defer tx.Rollback()

	w := &writer{ctx: ctx, tx: tx}
	w.change(c)
	if w.err != nil {
		return w.err
	}
	return errors.Wrap(tx.Commit(), "committing change")
}

// writer keeps the first error of a run of statements.
type writer struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (w *writer) exec(table, query string, args ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		w.err = errors.Wrapf(err, "writing %s", table)
	}
}

func (w *writer) settings(s catalog.Settings) {
	s = s.WithDefaults()
	w.exec("settings", `INSERT INTO settings (id, time_tracking, voting, watching, subtasks, attachments, hours_per_day, days_per_week) VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		s.TimeTracking, s.Voting, s.Watching, s.Subtasks, s.Attachments, s.HoursPerDay, s.DaysPerWeek)
}

func (w *writer) change(c catalog.Change) {
	w.exec("changes", `INSERT INTO changes (issue_id, field, from_value, to_value, author, at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.IssueID, c.Field, c.From, c.To, c.Author, formatTime(c.At))

	field, ok := history.CanonicalField(c.Field)
	if !ok {
		return
	}
	for _, v := range history.Values(c) {
		w.exec("change_values", `INSERT OR IGNORE INTO change_values (field, value) VALUES (?, ?)`, field, catalog.Fold(v))
	}
}

func (w *writer) json(v interface{}) string {
	if w.err != nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.err = errors.Wrap(err, "encoding column")
		return ""
	}
	if string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func (w *writer) yaml(f catalog.SavedFilter) string {
	if w.err != nil || f.Query == nil {
		return ""
	}
	b, err := yaml.Marshal(f.Query)
	if err != nil {
		w.err = errors.Wrapf(err, "encoding query of filter %d", f.ID)
		return ""
	}
	return string(b)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

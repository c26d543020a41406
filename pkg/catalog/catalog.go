/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"context"
	"time"

	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

type (
	User struct {
		Name         string    `yaml:"name"`
		DisplayName  string    `yaml:"displayName"`
		Email        string    `yaml:"email"`
		Active       bool      `yaml:"active"`
		Groups       []string  `yaml:"groups"`
		LastLogin    time.Time `yaml:"lastLogin"`
		CurrentLogin time.Time `yaml:"currentLogin"`
	}

	Group struct {
		Name string `yaml:"name"`
	}

	ProjectCategory struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	}

	// Project.BrowseRule is a CEL expression over user and project; empty
	// means anyone may browse.
	Project struct {
		ID         int64  `yaml:"id"`
		Key        string `yaml:"key"`
		Name       string `yaml:"name"`
		Category   int64  `yaml:"category"`
		Lead       string `yaml:"lead"`
		BrowseRule string `yaml:"browseRule"`
	}

	Version struct {
		ID        int64  `yaml:"id"`
		ProjectID int64  `yaml:"project"`
		Name      string `yaml:"name"`
		Released  bool   `yaml:"released"`
		Archived  bool   `yaml:"archived"`
		Sequence  int    `yaml:"sequence"`
	}

	Component struct {
		ID        int64  `yaml:"id"`
		ProjectID int64  `yaml:"project"`
		Name      string `yaml:"name"`
		Lead      string `yaml:"lead"`
	}

	IssueType struct {
		ID      int64  `yaml:"id"`
		Name    string `yaml:"name"`
		Subtask bool   `yaml:"subtask"`
	}

	Priority struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	}

	Resolution struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	}

	Status struct {
		ID       int64  `yaml:"id"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
	}

	// SecurityLevel.Members are user or group names.
	SecurityLevel struct {
		ID      int64    `yaml:"id"`
		Name    string   `yaml:"name"`
		Members []string `yaml:"members"`
	}

	Issue struct {
		ID              int64  `yaml:"id"`
		Key             string `yaml:"key"`
		ProjectID       int64  `yaml:"project"`
		ParentID        int64  `yaml:"parent"`
		SecurityLevelID int64  `yaml:"securityLevel"`
	}

	// SavedFilter.SharedWith holds group names; "*" shares with everyone.
	SavedFilter struct {
		ID         int64         `yaml:"id"`
		Name       string        `yaml:"name"`
		Owner      string        `yaml:"owner"`
		SharedWith []string      `yaml:"sharedWith"`
		Query      *clause.Query `yaml:"query"`
	}

	Option struct {
		ID       int64    `yaml:"id"`
		Value    string   `yaml:"value"`
		Children []Option `yaml:"children"`
	}

	// CustomField.ProjectIDs restricts the field to projects; empty means
	// global.
	CustomField struct {
		ID         int64    `yaml:"id"`
		Name       string   `yaml:"name"`
		Type       string   `yaml:"type"`
		Options    []Option `yaml:"options"`
		ProjectIDs []int64  `yaml:"projects"`
	}

	Settings struct {
		TimeTracking bool `yaml:"timeTracking"`
		Voting       bool `yaml:"voting"`
		Watching     bool `yaml:"watching"`
		Subtasks     bool `yaml:"subtasks"`
		Attachments  bool `yaml:"attachments"`
		HoursPerDay  int  `yaml:"hoursPerDay"`
		DaysPerWeek  int  `yaml:"daysPerWeek"`
	}

	Change struct {
		IssueID int64     `yaml:"issue"`
		Field   string    `yaml:"field"`
		From    string    `yaml:"from"`
		To      string    `yaml:"to"`
		Author  string    `yaml:"author"`
		At      time.Time `yaml:"at"`
	}

	Stats struct {
		Users        int `json:"users"`
		Groups       int `json:"groups"`
		Projects     int `json:"projects"`
		Versions     int `json:"versions"`
		Components   int `json:"components"`
		Issues       int `json:"issues"`
		Filters      int `json:"filters"`
		CustomFields int `json:"customFields"`
		Changes      int `json:"changes"`
	}
)

// Custom field types
const (
	FieldText            = "text"
	FieldNumber          = "number"
	FieldSelect          = "select"
	FieldMultiSelect     = "multiselect"
	FieldCascadingSelect = "cascadingselect"
	FieldUser            = "user"
	FieldMultiUser       = "multiuser"
	FieldGroup           = "group"
	FieldDate            = "date"
	FieldDateTime        = "datetime"
	FieldURL             = "url"
	FieldLabels          = "labels"
	FieldVersion         = "version"
	FieldProject         = "project"
)

// Status categories
var StatusCategories = []string{"To Do", "In Progress", "Done"}

// Catalog is the read side of the issue tracker configuration that
// validation consults. Point lookups return ErrNotFound when nothing
// matches.
type Catalog interface {
	Settings(ctx context.Context) (Settings, error)

	Users(ctx context.Context) ([]User, error)
	User(ctx context.Context, name string) (*User, error)
	Groups(ctx context.Context) ([]Group, error)
	Group(ctx context.Context, name string) (*Group, error)

	ProjectCategories(ctx context.Context) ([]ProjectCategory, error)
	Projects(ctx context.Context) ([]Project, error)
	Versions(ctx context.Context) ([]Version, error)
	Components(ctx context.Context) ([]Component, error)
	IssueTypes(ctx context.Context) ([]IssueType, error)
	Priorities(ctx context.Context) ([]Priority, error)
	Resolutions(ctx context.Context) ([]Resolution, error)
	Statuses(ctx context.Context) ([]Status, error)
	SecurityLevels(ctx context.Context) ([]SecurityLevel, error)
	CustomFields(ctx context.Context) ([]CustomField, error)

	SavedFilters(ctx context.Context) ([]SavedFilter, error)
	SavedFilter(ctx context.Context, id int64) (*SavedFilter, error)

	IssueByKey(ctx context.Context, key string) (*Issue, error)
	IssueByID(ctx context.Context, id int64) (*Issue, error)

	Stats(ctx context.Context) (Stats, error)
}

// WithDefaults fills unset working-time settings.
func (s Settings) WithDefaults() Settings {
	if s.HoursPerDay <= 0 {
		s.HoursPerDay = 8
	}
	if s.DaysPerWeek <= 0 {
		s.DaysPerWeek = 5
	}
	return s
}

// Global reports whether the field is available in every project.
func (f *CustomField) Global() bool {
	return len(f.ProjectIDs) == 0
}

// ClauseName is the cf[N] form of the field's clause name.
func (f *CustomField) ClauseName() string {
	return "cf[" + itoa(f.ID) + "]"
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Snapshot is an in-memory Catalog, usually decoded from a YAML export.
type Snapshot struct {
	Config            Settings          `yaml:"settings"`
	UserList          []User            `yaml:"users"`
	GroupList         []Group           `yaml:"groups"`
	CategoryList      []ProjectCategory `yaml:"categories"`
	ProjectList       []Project         `yaml:"projects"`
	VersionList       []Version         `yaml:"versions"`
	ComponentList     []Component       `yaml:"components"`
	IssueTypeList     []IssueType       `yaml:"issueTypes"`
	PriorityList      []Priority        `yaml:"priorities"`
	ResolutionList    []Resolution      `yaml:"resolutions"`
	StatusList        []Status          `yaml:"statuses"`
	SecurityLevelList []SecurityLevel   `yaml:"securityLevels"`
	IssueList         []Issue           `yaml:"issues"`
	FilterList        []SavedFilter     `yaml:"filters"`
	CustomFieldList   []CustomField     `yaml:"customFields"`
	ChangeList        []Change          `yaml:"changes"`
}

// LoadSnapshot decodes a snapshot, rejecting unknown keys.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding catalog snapshot")
	}
	return s, nil
}

func LoadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog snapshot")
	}
	defer f.Close()

	return LoadSnapshot(f)
}

func (s *Snapshot) Settings(context.Context) (Settings, error) {
	return s.Config.WithDefaults(), nil
}

func (s *Snapshot) Users(context.Context) ([]User, error) {
	return s.UserList, nil
}

func (s *Snapshot) User(_ context.Context, name string) (*User, error) {
	for i := range s.UserList {
		if EqualFold(s.UserList[i].Name, name) {
			return &s.UserList[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "user %q", name)
}

func (s *Snapshot) Groups(context.Context) ([]Group, error) {
	return s.GroupList, nil
}

func (s *Snapshot) Group(_ context.Context, name string) (*Group, error) {
	for i := range s.GroupList {
		if EqualFold(s.GroupList[i].Name, name) {
			return &s.GroupList[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "group %q", name)
}

func (s *Snapshot) ProjectCategories(context.Context) ([]ProjectCategory, error) {
	return s.CategoryList, nil
}

func (s *Snapshot) Projects(context.Context) ([]Project, error) {
	return s.ProjectList, nil
}

func (s *Snapshot) Versions(context.Context) ([]Version, error) {
	return s.VersionList, nil
}

func (s *Snapshot) Components(context.Context) ([]Component, error) {
	return s.ComponentList, nil
}

func (s *Snapshot) IssueTypes(context.Context) ([]IssueType, error) {
	return s.IssueTypeList, nil
}

func (s *Snapshot) Priorities(context.Context) ([]Priority, error) {
	return s.PriorityList, nil
}

func (s *Snapshot) Resolutions(context.Context) ([]Resolution, error) {
	return s.ResolutionList, nil
}

func (s *Snapshot) Statuses(context.Context) ([]Status, error) {
	return s.StatusList, nil
}

func (s *Snapshot) SecurityLevels(context.Context) ([]SecurityLevel, error) {
	return s.SecurityLevelList, nil
}

func (s *Snapshot) CustomFields(context.Context) ([]CustomField, error) {
	return s.CustomFieldList, nil
}

func (s *Snapshot) SavedFilters(context.Context) ([]SavedFilter, error) {
	return s.FilterList, nil
}

func (s *Snapshot) SavedFilter(_ context.Context, id int64) (*SavedFilter, error) {
	for i := range s.FilterList {
		if s.FilterList[i].ID == id {
			return &s.FilterList[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "filter %d", id)
}

func (s *Snapshot) IssueByKey(_ context.Context, key string) (*Issue, error) {
	for i := range s.IssueList {
		if EqualFold(s.IssueList[i].Key, key) {
			return &s.IssueList[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "issue %q", key)
}

func (s *Snapshot) IssueByID(_ context.Context, id int64) (*Issue, error) {
	for i := range s.IssueList {
		if s.IssueList[i].ID == id {
			return &s.IssueList[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "issue %d", id)
}

// Changes returns the recorded field change history.
func (s *Snapshot) Changes(context.Context) ([]Change, error) {
	return s.ChangeList, nil
}

func (s *Snapshot) Stats(context.Context) (Stats, error) {
	return Stats{
		Users:        len(s.UserList),
		Groups:       len(s.GroupList),
		Projects:     len(s.ProjectList),
		Versions:     len(s.VersionList),
		Components:   len(s.ComponentList),
		Issues:       len(s.IssueList),
		Filters:      len(s.FilterList),
		CustomFields: len(s.CustomFieldList),
		Changes:      len(s.ChangeList),
	}, nil
}

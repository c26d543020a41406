/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
)

func (r *Registry) feature(key string, enabled func(catalog.Settings) bool) ClauseValidator {
	return &FeatureValidator{services: r.services, key: key, enabled: enabled}
}

func (r *Registry) registerSystemFields() {
	s := r.services

	timeTracking := r.feature(KeyTimeTrackingDisabled, func(st catalog.Settings) bool { return st.TimeTracking })
	voting := r.feature(KeyVotesDisabled, func(st catalog.Settings) bool { return st.Voting })
	watching := r.feature(KeyWatchesDisabled, func(st catalog.Settings) bool { return st.Watching })
	subtasks := r.feature(KeySubtasksDisabled, func(st catalog.Settings) bool { return st.Subtasks })
	attachments := r.feature(KeyAttachmentsDisabled, func(st catalog.Settings) bool { return st.Attachments })

	users := &UserValidator{services: s}
	issues := &IssueValidator{services: s}

	// Projects and their parts
	r.addSystem(Field{ID: "project", Names: []string{"project"}, DataType: TypeProject, Operators: equalityWithEmpty, Orderable: true},
		&EntityValidator[catalog.Project]{services: s, list: s.browsableProjects})
	r.addSystem(Field{ID: "category", Names: []string{"category"}, DataType: TypeCategory, Operators: equalityWithEmpty},
		&EntityValidator[catalog.ProjectCategory]{services: s, list: catalogList(s.Catalog.ProjectCategories)})
	r.addSystem(Field{ID: "fixVersions", Names: []string{"fixVersion"}, DataType: TypeVersion, Operators: orderedWithEmpty, Orderable: true, History: true},
		&EntityValidator[catalog.Version]{services: s, list: s.visibleVersions})
	r.addSystem(Field{ID: "versions", Names: []string{"affectedVersion"}, DataType: TypeVersion, Operators: orderedWithEmpty, Orderable: true},
		&EntityValidator[catalog.Version]{services: s, list: s.visibleVersions})
	r.addSystem(Field{ID: "components", Names: []string{"component"}, DataType: TypeComponent, Operators: equalityWithEmpty, Orderable: true},
		&EntityValidator[catalog.Component]{services: s, list: s.visibleComponents})

	// Issue constants
	r.addSystem(Field{ID: "issuetype", Names: []string{"issuetype", "type"}, DataType: TypeIssueType, Operators: equalityWithEmpty, Orderable: true},
		&EntityValidator[catalog.IssueType]{services: s, list: catalogList(s.Catalog.IssueTypes)})
	r.addSystem(Field{ID: "priority", Names: []string{"priority"}, DataType: TypePriority, Operators: orderedWithEmpty, Orderable: true, History: true},
		&EntityValidator[catalog.Priority]{services: s, list: catalogList(s.Catalog.Priorities)})
	r.addSystem(Field{ID: "status", Names: []string{"status"}, DataType: TypeStatus, Operators: clause.EqualityOperators, Orderable: true, History: true},
		&EntityValidator[catalog.Status]{services: s, list: catalogList(s.Catalog.Statuses)})
	r.addSystem(Field{ID: "statusCategory", Names: []string{"statusCategory"}, DataType: TypeStatusCategory, Operators: clause.EqualityOperators},
		&EntityValidator[statusCategory]{services: s, list: statusCategories})
	r.addSystem(Field{ID: "resolution", Names: []string{"resolution"}, DataType: TypeResolution, Operators: orderedWithEmpty, Orderable: true, History: true},
		&EntityValidator[catalog.Resolution]{services: s, list: catalogList(s.Catalog.Resolutions), accept: []string{"Unresolved"}})

	// People
	r.addSystem(Field{ID: "assignee", Names: []string{"assignee"}, DataType: TypeUser, Operators: equalityWithEmpty, Orderable: true, History: true}, users)
	r.addSystem(Field{ID: "reporter", Names: []string{"reporter"}, DataType: TypeUser, Operators: equalityWithEmpty, Orderable: true, History: true}, users)
	r.addSystem(Field{ID: "creator", Names: []string{"creator"}, DataType: TypeUser, Operators: equalityWithEmpty, Orderable: true}, users)
	r.addSystem(Field{ID: "watcher", Names: []string{"watcher"}, DataType: TypeUser, Operators: clause.EqualityOperators}, watching, users)
	r.addSystem(Field{ID: "voter", Names: []string{"voter"}, DataType: TypeUser, Operators: clause.EqualityOperators}, voting, users)

	// Dates
	r.addSystem(Field{ID: "created", Names: []string{"created", "createdDate"}, DataType: TypeDate, Operators: equalityRelational, Orderable: true}, DateValidator{})
	r.addSystem(Field{ID: "updated", Names: []string{"updated", "updatedDate"}, DataType: TypeDate, Operators: orderedWithEmpty, Orderable: true}, DateValidator{})
	r.addSystem(Field{ID: "resolutiondate", Names: []string{"resolved", "resolutionDate"}, DataType: TypeDate, Operators: orderedWithEmpty, Orderable: true}, DateValidator{})
	r.addSystem(Field{ID: "lastViewed", Names: []string{"lastViewed"}, DataType: TypeDate, Operators: orderedWithEmpty, Orderable: true}, DateValidator{})
	r.addSystem(Field{ID: "duedate", Names: []string{"due", "duedate"}, DataType: TypeDate, Operators: orderedWithEmpty, Orderable: true}, DateValidator{Local: true})

	// Time tracking
	r.addSystem(Field{ID: "timeoriginalestimate", Names: []string{"originalEstimate", "timeOriginalEstimate"}, DataType: TypeDuration, Operators: orderedWithEmpty, Orderable: true}, timeTracking, DurationValidator{})
	r.addSystem(Field{ID: "timeestimate", Names: []string{"remainingEstimate", "timeEstimate"}, DataType: TypeDuration, Operators: orderedWithEmpty, Orderable: true}, timeTracking, DurationValidator{})
	r.addSystem(Field{ID: "timespent", Names: []string{"timeSpent"}, DataType: TypeDuration, Operators: orderedWithEmpty, Orderable: true}, timeTracking, DurationValidator{})
	r.addSystem(Field{ID: "workratio", Names: []string{"workratio"}, DataType: TypeNumber, Operators: orderedWithEmpty, Orderable: true}, timeTracking, PositiveIntegerValidator{})

	// Counters
	r.addSystem(Field{ID: "votes", Names: []string{"votes"}, DataType: TypeNumber, Operators: equalityRelational, Orderable: true}, voting, PositiveIntegerValidator{})
	r.addSystem(Field{ID: "watches", Names: []string{"watchers"}, DataType: TypeNumber, Operators: equalityRelational, Orderable: true}, watching, PositiveIntegerValidator{})

	// Issues
	r.addSystem(Field{ID: "issuekey", Names: []string{"issue", "issuekey", "key", "id"}, DataType: TypeIssue, Operators: equalityRelational, Orderable: true}, issues)
	r.addSystem(Field{ID: "parent", Names: []string{"parent"}, DataType: TypeIssue, Operators: clause.EqualityOperators}, subtasks, issues)

	// Text
	r.addSystem(Field{ID: "summary", Names: []string{"summary"}, DataType: TypeText, Operators: containsOperators, Orderable: true}, TextValidator{})
	r.addSystem(Field{ID: "comment", Names: []string{"comment"}, DataType: TypeText, Operators: containsOperators}, TextValidator{})
	r.addSystem(Field{ID: "description", Names: []string{"description"}, DataType: TypeText, Operators: clause.TextOperators}, TextValidator{})
	r.addSystem(Field{ID: "environment", Names: []string{"environment"}, DataType: TypeText, Operators: clause.TextOperators}, TextValidator{})
	r.addSystem(Field{ID: "text", Names: []string{"text"}, DataType: TypeText, Operators: textSearchOperators}, TextValidator{})

	// Everything else
	r.addSystem(Field{ID: "labels", Names: []string{"labels"}, DataType: TypeLabel, Operators: equalityWithEmpty, Orderable: true}, LabelValidator{})
	r.addSystem(Field{ID: "security", Names: []string{"level"}, DataType: TypeSecurityLevel, Operators: equalityWithEmpty, Orderable: true},
		&EntityValidator[catalog.SecurityLevel]{services: s, list: s.visibleLevels})
	r.addSystem(Field{ID: "filter", Names: filterFieldNames, DataType: TypeFilter, Operators: clause.EqualityOperators}, &FilterValidator{services: s})
	r.addSystem(Field{ID: "attachments", Names: []string{"attachments"}, DataType: TypeAny, Operators: clause.EmptyOnlyOperators}, attachments)
}

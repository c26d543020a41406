/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import "github.com/dburkart/jql/pkg/query/clause"

// DataType is the kind of value a field holds. A function may only be used
// with a field of the same type.
type DataType int

const (
	TypeAny DataType = iota
	TypeText
	TypeUser
	TypeGroup
	TypeProject
	TypeCategory
	TypeVersion
	TypeComponent
	TypeIssueType
	TypePriority
	TypeStatus
	TypeStatusCategory
	TypeResolution
	TypeDate
	TypeDuration
	TypeNumber
	TypeIssue
	TypeLabel
	TypeSecurityLevel
	TypeFilter
	TypeOption
	TypeCascadingOption
	TypeURL
)

var dataTypeNames = []string{
	"any", "text", "user", "group", "project", "category", "version",
	"component", "issuetype", "priority", "status", "statuscategory",
	"resolution", "date", "duration", "number", "issue", "label",
	"securitylevel", "filter", "option", "cascadingoption", "url",
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "unknown"
}

// Field describes a searchable clause. ID is shared by every alias of a
// field, e.g. issue, issuekey and key.
type Field struct {
	ID        string
	Names     []string
	DataType  DataType
	Operators clause.OperatorSet
	Orderable bool
	History   bool
}

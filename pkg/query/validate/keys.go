/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

// Message keys, one per distinct validation failure. The arguments each
// key expects are listed in the bundles under pkg/i18n/messages.
const (
	KeyNoSuchField          = "jql.validation.no.such.field"
	KeyLookupFailed         = "jql.validation.lookup.failed"
	KeyOperatorNotSupported = "jql.clause.does.not.support.operator"

	KeyIsRequiresEmpty    = "jql.operator.usage.is.requires.empty"
	KeyEmptyNotSupported  = "jql.operator.usage.empty.not.supported"
	KeyListRequiresList   = "jql.operator.usage.list.requires.list"
	KeySingleRequiresOne  = "jql.operator.usage.single.requires.single"
	KeyListEmpty          = "jql.operator.usage.list.empty"
	KeyFunctionNotExist   = "jql.function.does.not.exist"
	KeyFunctionArgCount   = "jql.function.arg.count"
	KeyFunctionIncompat   = "jql.function.incompatible"
	KeyFunctionArgInvalid = "jql.function.arg.invalid"
	KeyFunctionAnonymous  = "jql.function.anonymous.disallowed"
	KeyDuplicateValue     = "jql.clause.duplicate.value"

	KeyNoValueForName       = "jql.clause.no.value.for.name"
	KeyNoValueForID         = "jql.clause.no.value.for.id"
	KeyDateInvalid          = "jql.clause.date.format.invalid"
	KeyLocalDateInvalid     = "jql.clause.localdate.format.invalid"
	KeyDurationInvalid      = "jql.clause.duration.invalid"
	KeyTimeTrackingDisabled = "jql.clause.timetracking.disabled"
	KeyVotesDisabled        = "jql.clause.votes.disabled"
	KeyWatchesDisabled      = "jql.clause.watches.disabled"
	KeySubtasksDisabled     = "jql.clause.subtasks.disabled"
	KeyAttachmentsDisabled  = "jql.clause.attachments.disabled"
	KeyPositiveInteger      = "jql.clause.positive.integer"
	KeyIssueKeyInvalid      = "jql.clause.issuekey.invalid"
	KeyIssueNotFound        = "jql.clause.issue.not.found"
	KeyIssueProjectNotFound = "jql.clause.issuekey.project.not.found"
	KeyTextEmpty            = "jql.text.clause.empty.value"
	KeyTextLeadingWildcard  = "jql.text.clause.leading.wildcard"
	KeyTextBadSyntax        = "jql.text.clause.bad.syntax"
	KeyTextStopWords        = "jql.text.clause.stop.words"
	KeyLabelWhitespace      = "jql.clause.labels.whitespace"
	KeyLabelTooLong         = "jql.clause.labels.too.long"
	KeyNumberInvalid        = "jql.clause.number.invalid"
	KeyURLInvalid           = "jql.clause.url.invalid"
	KeyCascadeInvalid       = "jql.clause.cascade.invalid"
	KeyFilterCyclical       = "jql.saved.filter.detected.cyclical"

	KeyHistoryNotSupported   = "jql.history.field.not.supported"
	KeyHistoryValueNotFound  = "jql.history.value.not.found"
	KeyPredicateSingleValue  = "jql.history.predicate.single.value"
	KeyDuringTwoValues       = "jql.history.during.requires.two.values"
	KeyPredicateNotSupported = "jql.history.predicate.operator.not.supported"

	KeyOrderByNotFound    = "jql.order.by.field.not.found"
	KeyOrderByNotOrdered  = "jql.order.by.field.not.orderable"
	KeyOrderByDuplicate   = "jql.order.by.duplicate.field"
	KeyOrderByInvalidSort = "jql.order.by.invalid.order"
)

// AllKeys lists every key a validator may emit.
var AllKeys = []string{
	KeyNoSuchField, KeyLookupFailed, KeyOperatorNotSupported,
	KeyIsRequiresEmpty, KeyEmptyNotSupported, KeyListRequiresList, KeySingleRequiresOne, KeyListEmpty,
	KeyFunctionNotExist, KeyFunctionArgCount, KeyFunctionIncompat, KeyFunctionArgInvalid, KeyFunctionAnonymous,
	KeyDuplicateValue,
	KeyNoValueForName, KeyNoValueForID, KeyDateInvalid, KeyLocalDateInvalid, KeyDurationInvalid,
	KeyTimeTrackingDisabled, KeyVotesDisabled, KeyWatchesDisabled, KeySubtasksDisabled, KeyAttachmentsDisabled,
	KeyPositiveInteger, KeyIssueKeyInvalid, KeyIssueNotFound, KeyIssueProjectNotFound,
	KeyTextEmpty, KeyTextLeadingWildcard, KeyTextBadSyntax, KeyTextStopWords,
	KeyLabelWhitespace, KeyLabelTooLong, KeyNumberInvalid, KeyURLInvalid, KeyCascadeInvalid, KeyFilterCyclical,
	KeyHistoryNotSupported, KeyHistoryValueNotFound, KeyPredicateSingleValue, KeyDuringTwoValues, KeyPredicateNotSupported,
	KeyOrderByNotFound, KeyOrderByNotOrdered, KeyOrderByDuplicate, KeyOrderByInvalidSort,
}

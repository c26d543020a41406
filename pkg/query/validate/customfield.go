/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"strconv"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
)

var (
	equalityWithEmpty   = clause.EqualityOperatorsWithEmpty
	equalityRelational  = clause.Union(clause.EqualityOperators, clause.RelationalOperators)
	orderedWithEmpty    = clause.Union(clause.EqualityOperatorsWithEmpty, clause.RelationalOperators)
	containsOperators   = clause.OperatorSet{clause.OpLike, clause.OpNotLike}
	textSearchOperators = clause.OperatorSet{clause.OpLike}
)

// customFieldHandler builds the handler for a custom field from its type.
// Unknown types still get a handler so the field name resolves.
func customFieldHandler(s *Services, cf catalog.CustomField) *Handler {
	field := &Field{
		ID:        "customfield_" + strconv.FormatInt(cf.ID, 10),
		Names:     []string{cf.ClauseName(), cf.Name},
		DataType:  TypeAny,
		Operators: equalityWithEmpty,
	}
	options := func(context.Context, *catalog.User) ([]catalog.Option, error) {
		return cf.Options, nil
	}

	var value ClauseValidator
	switch cf.Type {
	case catalog.FieldText:
		field.DataType, field.Operators = TypeText, clause.TextOperators
		value = TextValidator{}
	case catalog.FieldNumber:
		field.DataType, field.Operators, field.Orderable = TypeNumber, orderedWithEmpty, true
		value = NumberValidator{}
	case catalog.FieldSelect, catalog.FieldMultiSelect:
		field.DataType, field.Orderable = TypeOption, cf.Type == catalog.FieldSelect
		value = &EntityValidator[catalog.Option]{services: s, list: options}
	case catalog.FieldCascadingSelect:
		field.DataType = TypeCascadingOption
		value = &CascadeValidator{options: cf.Options}
	case catalog.FieldUser, catalog.FieldMultiUser:
		field.DataType, field.Orderable = TypeUser, cf.Type == catalog.FieldUser
		value = &UserValidator{services: s}
	case catalog.FieldGroup:
		field.DataType = TypeGroup
		value = &GroupValidator{services: s}
	case catalog.FieldDate, catalog.FieldDateTime:
		field.DataType, field.Operators, field.Orderable = TypeDate, orderedWithEmpty, true
		value = DateValidator{Local: cf.Type == catalog.FieldDate}
	case catalog.FieldURL:
		field.DataType = TypeURL
		value = URLValidator{}
	case catalog.FieldLabels:
		field.DataType = TypeLabel
		value = LabelValidator{}
	case catalog.FieldVersion:
		field.DataType, field.Operators, field.Orderable = TypeVersion, orderedWithEmpty, true
		value = &EntityValidator[catalog.Version]{services: s, list: s.visibleVersions}
	case catalog.FieldProject:
		field.DataType, field.Orderable = TypeProject, true
		value = &EntityValidator[catalog.Project]{services: s, list: s.browsableProjects}
	}

	validators := []ClauseValidator{SupportedOperatorsValidator{Operators: field.Operators}}
	if value != nil {
		validators = append(validators, value)
	}
	return &Handler{Field: field, Validator: Compose(validators...)}
}

// CascadeValidator checks values of a cascading select. Plain values may
// name a parent or a child option; cascadeOption(parent[, child]) must
// name a parent and, optionally, one of its children or "none".
type CascadeValidator struct {
	options []catalog.Option
}

func (v *CascadeValidator) Validate(_ context.Context, _ *catalog.User, c *clause.TerminalClause) *message.Set {
	messages := message.New()

	var all []catalog.Option
	for _, o := range v.options {
		all = append(all, o)
		all = append(all, o.Children...)
	}
	for _, l := range Values(c.Operand) {
		if len(catalog.Find(all, l.Value(), l.IsInt)) == 0 {
			notFound(messages, c.Field, l)
		}
	}

	for _, fn := range Functions(c.Operand) {
		if !catalog.EqualFold(fn.Name, "cascadeOption") || len(fn.Args) == 0 {
			continue
		}
		if !v.validCascade(fn.Args) {
			messages.AddError(KeyCascadeInvalid, c.Field)
		}
	}
	return messages
}

func (v *CascadeValidator) validCascade(args []string) bool {
	parents := catalog.Find(v.options, args[0], false)
	if len(parents) == 0 {
		return false
	}
	if len(args) < 2 || catalog.EqualFold(args[1], "none") {
		return true
	}
	for _, p := range parents {
		if len(catalog.Find(p.Children, args[1], false)) > 0 {
			return true
		}
	}
	return false
}

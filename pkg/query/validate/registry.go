/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"context"
	"sort"
	"sync"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/pkg/errors"
)

// Handler pairs a field with the validator for clauses on it.
type Handler struct {
	Field     *Field
	Validator ClauseValidator
}

type customHandler struct {
	*Handler
	field catalog.CustomField
}

// Registry maps case-folded clause names to handlers. System fields are
// fixed; custom fields are loaded from the catalog by Refresh and only
// resolve for searchers who can see them.
type Registry struct {
	services  *Services
	functions *FunctionRegistry
	usage     *OperatorUsage
	was       *WasClauseValidator
	changed   *ChangedClauseValidator

	mu     sync.RWMutex
	system map[string]*Handler
	order  []*Handler
	custom map[string][]customHandler
}

func NewRegistry(s *Services) *Registry {
	functions := NewFunctionRegistry(s)
	r := &Registry{
		services:  s,
		functions: functions,
		usage:     NewOperatorUsage(functions),
		system:    make(map[string]*Handler),
		custom:    make(map[string][]customHandler),
	}
	r.was = &WasClauseValidator{registry: r}
	r.changed = &ChangedClauseValidator{registry: r}
	r.registerSystemFields()
	return r
}

func (r *Registry) Services() *Services {
	return r.services
}

func (r *Registry) Functions() *FunctionRegistry {
	return r.functions
}

func (r *Registry) OperatorUsage() *OperatorUsage {
	return r.usage
}

func (r *Registry) WasValidator() *WasClauseValidator {
	return r.was
}

func (r *Registry) ChangedValidator() *ChangedClauseValidator {
	return r.changed
}

// Register adds a system handler under every name of its field.
func (r *Registry) Register(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range h.Field.Names {
		r.system[catalog.Fold(name)] = h
	}
	r.order = append(r.order, h)
}

// Refresh reloads custom fields from the catalog.
func (r *Registry) Refresh(ctx context.Context) error {
	fields, err := r.services.Catalog.CustomFields(ctx)
	if err != nil {
		return errors.Wrap(err, "loading custom fields")
	}

	custom := make(map[string][]customHandler)
	for _, cf := range fields {
		h := customHandler{Handler: customFieldHandler(r.services, cf), field: cf}
		for _, name := range h.Field.Names {
			folded := catalog.Fold(name)
			custom[folded] = append(custom[folded], h)
		}
	}

	r.mu.Lock()
	r.custom = custom
	r.mu.Unlock()

	r.services.Log.Debug().Int("custom_fields", len(fields)).Msg("refreshed field registry")
	return nil
}

// Handlers returns the handlers for a clause name visible to user. A
// system field shadows custom fields of the same name. Several custom
// fields may share a name.
func (r *Registry) Handlers(ctx context.Context, user *catalog.User, name string) ([]*Handler, error) {
	folded := catalog.Fold(name)

	r.mu.RLock()
	h, ok := r.system[folded]
	candidates := r.custom[folded]
	r.mu.RUnlock()

	if ok {
		return []*Handler{h}, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return r.visibleCustom(ctx, user, candidates)
}

func (r *Registry) visibleCustom(ctx context.Context, user *catalog.User, candidates []customHandler) ([]*Handler, error) {
	projects, err := r.services.Catalog.Projects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}

	var ret []*Handler
	for i := range candidates {
		ok, err := r.services.Permissions.CanSeeField(user, &candidates[i].field, projects)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, candidates[i].Handler)
		}
	}
	return ret, nil
}

// Fields returns every field visible to user, system fields first in
// registration order, then custom fields by id.
func (r *Registry) Fields(ctx context.Context, user *catalog.User) ([]*Field, error) {
	r.mu.RLock()
	ret := make([]*Field, 0, len(r.order))
	for _, h := range r.order {
		ret = append(ret, h.Field)
	}

	seen := make(map[string]bool)
	var candidates []customHandler
	for _, handlers := range r.custom {
		for _, h := range handlers {
			if !seen[h.Field.ID] {
				seen[h.Field.ID] = true
				candidates = append(candidates, h)
			}
		}
	}
	r.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].field.ID < candidates[j].field.ID })
	visible, err := r.visibleCustom(ctx, user, candidates)
	if err != nil {
		return nil, err
	}
	for _, h := range visible {
		ret = append(ret, h.Field)
	}
	return ret, nil
}

// ClauseNames returns every clause name visible to user, sorted.
func (r *Registry) ClauseNames(ctx context.Context, user *catalog.User) ([]string, error) {
	fields, err := r.Fields(ctx, user)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, f := range fields {
		names = append(names, f.Names...)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) addSystem(f Field, validators ...ClauseValidator) {
	all := append([]ClauseValidator{SupportedOperatorsValidator{Operators: f.Operators}}, validators...)
	r.Register(&Handler{Field: &f, Validator: Compose(all...)})
}

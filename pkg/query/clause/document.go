/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDocument = errors.New("invalid query document")

// ParseDocument decodes a single YAML or JSON query document.
func ParseDocument(data []byte) (*Query, error) {
	queries, err := DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(queries) != 1 {
		return nil, errors.Wrapf(ErrInvalidDocument, "expected 1 document, found %d", len(queries))
	}
	return queries[0], nil
}

// DecodeAll decodes every document of a (possibly multi-document) stream.
func DecodeAll(r io.Reader) ([]*Query, error) {
	var queries []*Query
	dec := yaml.NewDecoder(r)
	for {
		q := &Query{}
		err := dec.Decode(q)
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, ErrInvalidDocument) {
				return nil, err
			}
			return nil, errors.Wrap(ErrInvalidDocument, err.Error())
		}
		queries = append(queries, q)
	}
	return queries, nil
}

type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

type mapping struct {
	node  *yaml.Node
	pairs []pair
}

func invalid(node *yaml.Node, format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidDocument, "line %d: "+format, append([]interface{}{node.Line}, args...)...)
}

func asMapping(node *yaml.Node) (*mapping, error) {
	if node.Kind != yaml.MappingNode {
		return nil, invalid(node, "expected a mapping")
	}
	m := &mapping{node: node}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return nil, invalid(key, "duplicate key %q", key.Value)
		}
		seen[key.Value] = true
		m.pairs = append(m.pairs, pair{key: key, value: node.Content[i+1]})
	}
	return m, nil
}

func (m *mapping) get(key string) *yaml.Node {
	for _, p := range m.pairs {
		if p.key.Value == key {
			return p.value
		}
	}
	return nil
}

// only rejects any key not in allowed.
func (m *mapping) only(allowed ...string) error {
	for _, p := range m.pairs {
		found := false
		for _, a := range allowed {
			if p.key.Value == a {
				found = true
				break
			}
		}
		if !found {
			return invalid(p.key, "unexpected key %q", p.key.Value)
		}
	}
	return nil
}

func (m *mapping) str(key string, required bool) (string, error) {
	n := m.get(key)
	if n == nil {
		if required {
			return "", invalid(m.node, "missing %q", key)
		}
		return "", nil
	}
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", invalid(n, "%q must be a scalar", key)
	}
	return n.Value, nil
}

func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	m, err := asMapping(node)
	if err != nil {
		return err
	}

	if m.get("where") == nil && m.get("orderBy") == nil && len(m.pairs) > 0 {
		// A bare clause node is the where clause.
		q.Where, err = decodeClause(node)
		return err
	}

	if err = m.only("where", "orderBy"); err != nil {
		return err
	}

	if where := m.get("where"); where != nil {
		if q.Where, err = decodeClause(where); err != nil {
			return err
		}
	}

	if orderBy := m.get("orderBy"); orderBy != nil {
		if q.OrderBy, err = decodeOrderBy(orderBy); err != nil {
			return err
		}
	}

	return nil
}

func decodeOrderBy(node *yaml.Node) ([]SearchSort, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(node, "orderBy must be a list")
	}

	var sorts []SearchSort
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode {
			sorts = append(sorts, SearchSort{Field: item.Value})
			continue
		}
		m, err := asMapping(item)
		if err != nil {
			return nil, err
		}
		if err = m.only("field", "order"); err != nil {
			return nil, err
		}
		field, err := m.str("field", true)
		if err != nil {
			return nil, err
		}
		order, err := m.str("order", false)
		if err != nil {
			return nil, err
		}
		sorts = append(sorts, SearchSort{Field: field, Order: order})
	}
	return sorts, nil
}

var compoundKeys = []string{"and", "or", "not", "was", "changed"}

func decodeClause(node *yaml.Node) (Clause, error) {
	m, err := asMapping(node)
	if err != nil {
		return nil, err
	}

	for _, key := range compoundKeys {
		sub := m.get(key)
		if sub == nil {
			continue
		}
		if len(m.pairs) != 1 {
			return nil, invalid(node, "%q must be the only key of its clause", key)
		}

		switch key {
		case "and", "or":
			clauses, err := decodeClauseList(sub, key)
			if err != nil {
				return nil, err
			}
			if key == "and" {
				return And(clauses...), nil
			}
			return Or(clauses...), nil
		case "not":
			c, err := decodeClause(sub)
			if err != nil {
				return nil, err
			}
			return Not(c), nil
		case "was":
			return decodeWas(sub)
		case "changed":
			return decodeChanged(sub)
		}
	}

	return decodeTerminal(m)
}

func decodeClauseList(node *yaml.Node, key string) ([]Clause, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(node, "%q must be a list of clauses", key)
	}
	if len(node.Content) == 0 {
		return nil, invalid(node, "%q must contain at least one clause", key)
	}

	clauses := make([]Clause, 0, len(node.Content))
	for _, item := range node.Content {
		c, err := decodeClause(item)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

var operandKeys = []string{"value", "values", "empty", "function"}

func decodeTerminal(m *mapping) (*TerminalClause, error) {
	if err := m.only("field", "operator", "value", "values", "empty", "function"); err != nil {
		return nil, err
	}

	field, err := m.str("field", true)
	if err != nil {
		return nil, err
	}
	op, err := decodeOperator(m, OpInvalid)
	if err != nil {
		return nil, err
	}
	operand, err := decodeOperand(m, true)
	if err != nil {
		return nil, err
	}

	return Terminal(field, op, operand), nil
}

func decodeWas(node *yaml.Node) (*WasClause, error) {
	m, err := asMapping(node)
	if err != nil {
		return nil, err
	}
	if err = m.only("field", "operator", "value", "values", "empty", "function", "predicates"); err != nil {
		return nil, err
	}

	w := &WasClause{}
	if w.Field, err = m.str("field", true); err != nil {
		return nil, err
	}
	if w.Operator, err = decodeOperator(m, OpWas); err != nil {
		return nil, err
	}
	if w.Operand, err = decodeOperand(m, true); err != nil {
		return nil, err
	}
	if w.Predicate, err = decodePredicates(m); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeChanged(node *yaml.Node) (*ChangedClause, error) {
	m, err := asMapping(node)
	if err != nil {
		return nil, err
	}
	if err = m.only("field", "operator", "predicates"); err != nil {
		return nil, err
	}

	c := &ChangedClause{}
	if c.Field, err = m.str("field", true); err != nil {
		return nil, err
	}
	if c.Operator, err = decodeOperator(m, OpChanged); err != nil {
		return nil, err
	}
	if c.Predicate, err = decodePredicates(m); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeOperator(m *mapping, fallback Operator) (Operator, error) {
	s, err := m.str("operator", fallback == OpInvalid)
	if err != nil {
		return OpInvalid, err
	}
	if s == "" {
		return fallback, nil
	}
	op, ok := ParseOperator(s)
	if !ok {
		return OpInvalid, invalid(m.get("operator"), "unknown operator %q", s)
	}
	return op, nil
}

func decodePredicates(m *mapping) (HistoryPredicate, error) {
	node := m.get("predicates")
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(node, "predicates must be a list")
	}

	var predicates []HistoryPredicate
	for _, item := range node.Content {
		pm, err := asMapping(item)
		if err != nil {
			return nil, err
		}
		if err = pm.only("operator", "value", "values", "empty", "function"); err != nil {
			return nil, err
		}
		op, err := decodeOperator(pm, OpInvalid)
		if err != nil {
			return nil, err
		}
		operand, err := decodeOperand(pm, true)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, Predicate(op, operand))
	}

	switch len(predicates) {
	case 0:
		return nil, nil
	case 1:
		return predicates[0], nil
	}
	return &AndHistoryPredicate{Predicates: predicates}, nil
}

// decodeOperand reads exactly one of the operand keys from m.
func decodeOperand(m *mapping, required bool) (Operand, error) {
	var key string
	for _, k := range operandKeys {
		if m.get(k) == nil {
			continue
		}
		if key != "" {
			return nil, invalid(m.node, "both %q and %q given", key, k)
		}
		key = k
	}

	if key == "" {
		if required {
			return nil, invalid(m.node, "missing operand")
		}
		return nil, nil
	}

	node := m.get(key)
	switch key {
	case "value":
		return decodeScalar(node)
	case "values":
		return decodeValues(node)
	case "empty":
		var b bool
		if node.Kind != yaml.ScalarNode || node.Decode(&b) != nil || !b {
			return nil, invalid(node, "empty must be true")
		}
		return EmptyOperand{}, nil
	default:
		return decodeFunction(node)
	}
}

func decodeScalar(node *yaml.Node) (SingleValueOperand, error) {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return SingleValueOperand{}, invalid(node, "expected a string or integer value")
	}
	if node.Tag == "!!int" {
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return SingleValueOperand{}, invalid(node, "integer %q out of range", node.Value)
		}
		return IntOperand(i), nil
	}
	return StringOperand(node.Value), nil
}

func decodeValues(node *yaml.Node) (MultiValueOperand, error) {
	if node.Kind != yaml.SequenceNode {
		return MultiValueOperand{}, invalid(node, "values must be a list")
	}

	multi := MultiValueOperand{Values: make([]Operand, 0, len(node.Content))}
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode {
			v, err := decodeScalar(item)
			if err != nil {
				return multi, err
			}
			multi.Values = append(multi.Values, v)
			continue
		}

		m, err := asMapping(item)
		if err != nil {
			return multi, err
		}
		if err = m.only(operandKeys...); err != nil {
			return multi, err
		}
		v, err := decodeOperand(m, true)
		if err != nil {
			return multi, err
		}
		multi.Values = append(multi.Values, v)
	}
	return multi, nil
}

func decodeFunction(node *yaml.Node) (FunctionOperand, error) {
	if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
		return Function(node.Value), nil
	}

	m, err := asMapping(node)
	if err != nil {
		return FunctionOperand{}, err
	}
	if err = m.only("name", "args"); err != nil {
		return FunctionOperand{}, err
	}
	name, err := m.str("name", true)
	if err != nil {
		return FunctionOperand{}, err
	}

	f := Function(name)
	if args := m.get("args"); args != nil {
		if args.Kind != yaml.SequenceNode {
			return f, invalid(args, "args must be a list")
		}
		for _, a := range args.Content {
			if a.Kind != yaml.ScalarNode {
				return f, invalid(a, "function arguments must be scalars")
			}
			f.Args = append(f.Args, a.Value)
		}
	}
	return f, nil
}

//-- Encoding

func (q Query) MarshalYAML() (interface{}, error) {
	var pairs []*yaml.Node
	if q.Where != nil {
		where, err := encodeClause(q.Where)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("where"), where)
	}
	if len(q.OrderBy) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range q.OrderBy {
			sort := []*yaml.Node{str("field"), str(s.Field)}
			if s.Order != "" {
				sort = append(sort, str("order"), str(s.Order))
			}
			seq.Content = append(seq.Content, mapNode(sort...))
		}
		pairs = append(pairs, str("orderBy"), seq)
	}
	return mapNode(pairs...), nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func mapNode(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

func encodeClause(c Clause) (*yaml.Node, error) {
	switch n := c.(type) {
	case *AndClause, *OrClause:
		key, subs := "and", []Clause(nil)
		if a, ok := n.(*AndClause); ok {
			subs = a.Clauses
		} else {
			key, subs = "or", n.(*OrClause).Clauses
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, sub := range subs {
			s, err := encodeClause(sub)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, s)
		}
		return mapNode(str(key), seq), nil

	case *NotClause:
		sub, err := encodeClause(n.SubClause)
		if err != nil {
			return nil, err
		}
		return mapNode(str("not"), sub), nil

	case *TerminalClause:
		pairs := []*yaml.Node{str("field"), str(n.Field), str("operator"), str(n.Operator.String())}
		operand, err := encodeOperandPair(n.Operand)
		if err != nil {
			return nil, err
		}
		return mapNode(append(pairs, operand...)...), nil

	case *WasClause:
		pairs := []*yaml.Node{str("field"), str(n.Field), str("operator"), str(n.Operator.String())}
		operand, err := encodeOperandPair(n.Operand)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, operand...)
		if pairs, err = appendPredicates(pairs, n.Predicate); err != nil {
			return nil, err
		}
		return mapNode(str("was"), mapNode(pairs...)), nil

	case *ChangedClause:
		pairs := []*yaml.Node{str("field"), str(n.Field)}
		pairs, err := appendPredicates(pairs, n.Predicate)
		if err != nil {
			return nil, err
		}
		return mapNode(str("changed"), mapNode(pairs...)), nil
	}

	return nil, errors.Errorf("cannot encode clause of type %T", c)
}

func appendPredicates(pairs []*yaml.Node, p HistoryPredicate) ([]*yaml.Node, error) {
	terminals := FlattenPredicate(p)
	if len(terminals) == 0 {
		return pairs, nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range terminals {
		operand, err := encodeOperandPair(t.Operand)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, mapNode(append([]*yaml.Node{str("operator"), str(t.Operator.String())}, operand...)...))
	}
	return append(pairs, str("predicates"), seq), nil
}

func encodeOperandPair(o Operand) ([]*yaml.Node, error) {
	switch v := o.(type) {
	case MultiValueOperand:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Values {
			if single, ok := item.(SingleValueOperand); ok {
				seq.Content = append(seq.Content, encodeScalar(single))
				continue
			}
			pair, err := encodeOperandPair(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, mapNode(pair...))
		}
		return []*yaml.Node{str("values"), seq}, nil
	case SingleValueOperand:
		return []*yaml.Node{str("value"), encodeScalar(v)}, nil
	case EmptyOperand:
		return []*yaml.Node{str("empty"), {Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}}, nil
	case FunctionOperand:
		pairs := []*yaml.Node{str("name"), str(v.Name)}
		if len(v.Args) > 0 {
			args := &yaml.Node{Kind: yaml.SequenceNode}
			for _, a := range v.Args {
				args.Content = append(args.Content, str(a))
			}
			pairs = append(pairs, str("args"), args)
		}
		return []*yaml.Node{str("function"), mapNode(pairs...)}, nil
	}
	return nil, errors.Errorf("cannot encode operand of type %T", o)
}

func encodeScalar(v SingleValueOperand) *yaml.Node {
	if v.IsInt {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Value()}
	}
	return str(v.Str)
}

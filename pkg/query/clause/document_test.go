/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package clause

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDocuments(t *testing.T) {
	testDirectory, err := filepath.Abs("testdata/documents")
	require.NoError(t, err)

	inputDirectory := path.Join(testDirectory, "input")
	expectationDirectory := path.Join(testDirectory, "expectations")

	tests, err := filepath.Glob(inputDirectory + "/*")
	require.NoError(t, err)
	require.NotEmpty(t, tests)

	for _, test := range tests {
		t.Run(filepath.Base(test), func(t *testing.T) {
			var expected string
			name := strings.TrimSuffix(filepath.Base(test), filepath.Ext(test))
			expectation := path.Join(expectationDirectory, name+".txt")
			if b, err := os.ReadFile(expectation); err == nil {
				expected = string(b)
			}

			data, err := os.ReadFile(test)
			require.NoError(t, err)

			q, err := ParseDocument(data)
			require.NoError(t, err)

			actual := Dump(q.Where)

			if os.Getenv("SHOULD_REBASE") != "" {
				if err := os.WriteFile(expectation, []byte(actual), 0666); err != nil {
					t.Error(err)
				}
				expected = actual
			}

			if a, e := strings.TrimSpace(actual), strings.TrimSpace(expected); a != e {
				t.Errorf("Expectation not met:\n%s", diff.LineDiff(e, a))
			}
		})
	}
}

func TestDocumentOrderBy(t *testing.T) {
	q, err := ParseDocument([]byte("orderBy: [key, {field: created, order: desc}]"))
	require.NoError(t, err)
	assert.Nil(t, q.Where)
	assert.Equal(t, []SearchSort{{Field: "key"}, {Field: "created", Order: "desc"}}, q.OrderBy)
}

func TestDocumentDefaults(t *testing.T) {
	q, err := ParseDocument([]byte("was: {field: status, value: Open}"))
	require.NoError(t, err)
	w := q.Where.(*WasClause)
	assert.Equal(t, OpWas, w.Operator)
	assert.Nil(t, w.Predicate)

	q, err = ParseDocument([]byte("changed: {field: status}"))
	require.NoError(t, err)
	assert.Equal(t, OpChanged, q.Where.(*ChangedClause).Operator)

	q, err = ParseDocument([]byte(`{field: id, operator: "=", value: "10000"}`))
	require.NoError(t, err)
	assert.Equal(t, StringOperand("10000"), q.Where.(*TerminalClause).Operand)
}

func TestInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"not a mapping":    "- field: project",
		"unknown key":      "{field: project, operator: '=', value: x, colour: red}",
		"two operands":     "{field: project, operator: '=', value: x, empty: true}",
		"no operand":       "{field: project, operator: '='}",
		"no field":         "{operator: '=', value: x}",
		"bad operator":     "{field: project, operator: '==', value: x}",
		"null value":       "{field: project, operator: '=', value: null}",
		"empty false":      "{field: project, operator: is, empty: false}",
		"ambiguous":        "{and: [{field: a, operator: '=', value: 1}], field: b}",
		"empty and":        "{and: []}",
		"bad predicates":   "{was: {field: status, value: Open, predicates: {operator: by, value: x}}}",
		"unknown where":    "{where: {field: a, operator: '=', value: 1}, limit: 10}",
		"two documents":    "{field: a, operator: '=', value: 1}\n---\n{field: b, operator: '=', value: 2}\n",
		"nested list item": "{field: a, operator: in, values: [[1, 2]]}",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestDecodeAll(t *testing.T) {
	queries, err := DecodeAll(strings.NewReader("{field: a, operator: '=', value: 1}\n---\n{field: b, operator: '!=', value: 2}\n"))
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "a = 1", queries[0].String())
	assert.Equal(t, "b != 2", queries[1].String())
}

func TestDocumentRoundTrip(t *testing.T) {
	files, err := filepath.Glob("testdata/documents/input/*")
	require.NoError(t, err)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)

			q, err := ParseDocument(data)
			require.NoError(t, err)

			out, err := yaml.Marshal(q)
			require.NoError(t, err)

			again, err := ParseDocument(out)
			require.NoError(t, err, string(out))
			assert.Equal(t, q, again)
		})
	}
}

func TestMarshalKeepsStringNumbers(t *testing.T) {
	q := &Query{Where: Terminal("id", OpEquals, StringOperand("10000"))}
	out, err := yaml.Marshal(q)
	require.NoError(t, err)

	again, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, StringOperand("10000"), again.Where.(*TerminalClause).Operand)
}

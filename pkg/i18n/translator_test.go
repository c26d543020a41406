/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinBundles(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "de"}, tr.Languages())
	assert.Equal(t, tr.Keys("en"), tr.Keys("de"), "every English message has a German translation")
}

func TestLocalizerMatching(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	tests := map[string]string{
		"":                  "en",
		"en-US":             "en",
		"de":                "de",
		"de-AT":             "de",
		"fr-FR":             "en",
		"fr;q=0.9, de;q=0.8": "de",
		"not a tag at all!": "en",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, tr.Localizer(input).Language())
		})
	}
}

func TestText(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	en := tr.Localizer("en")
	assert.Equal(t, "Field 'foo' does not exist or you do not have permission to view it.", en.Text("jql.validation.no.such.field", "foo"))
	assert.Equal(t, "Function 'now' expects 0 argument(s) but received 2.", en.Text("jql.function.arg.count", "now", "0", "2"))
	assert.Equal(t, "unknown.key", en.Text("unknown.key"))
	assert.Equal(t, "unknown.key [a, b]", en.Text("unknown.key", "a", "b"))

	de := tr.Localizer("de")
	assert.Equal(t, "Die JQL-Funktion 'foo' wurde nicht gefunden.", de.Text("jql.function.does.not.exist", "foo"))
}

func TestFallbackToEnglish(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	require.NoError(t, tr.Load([]byte("lang: fr\nmessages:\n  jql.function.does.not.exist: \"Fonction '{0}' introuvable.\"\n")))

	fr := tr.Localizer("fr-CA")
	assert.Equal(t, "fr", fr.Language())
	assert.Equal(t, "Fonction 'x' introuvable.", fr.Text("jql.function.does.not.exist", "x"))
	assert.Equal(t, "The sort field 'key' is referenced multiple times.", fr.Text("jql.order.by.duplicate.field", "key"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("lang: en\nmessages:\n  custom.key: \"Custom {0}\"\n"), 0600))

	tr, err := New()
	require.NoError(t, err)
	require.NoError(t, tr.LoadFile(dir))

	assert.Equal(t, "Custom x", tr.Localizer("en").Text("custom.key", "x"))
	assert.Contains(t, tr.Keys("en"), "jql.validation.no.such.field")

	assert.Error(t, tr.LoadFile(filepath.Join(dir, "missing.yaml")))
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Error(t, tr.Load([]byte("lang: en\nmsgs: {}\n")))
	assert.Error(t, tr.Load([]byte("lang: \"!!\"\nmessages: {}\n")))
}

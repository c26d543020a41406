/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package i18n

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var embedded embed.FS

// Bundle is the on-disk form of one language's messages.
type Bundle struct {
	Lang     string            `yaml:"lang"`
	Messages map[string]string `yaml:"messages"`
}

// Translator holds message bundles keyed by language. English is always
// present and is the fallback for every other language.
type Translator struct {
	mu      sync.RWMutex
	tags    []language.Tag
	bundles map[language.Tag]map[string]string
	matcher language.Matcher
}

// New returns a Translator loaded with the built-in bundles.
func New() (*Translator, error) {
	t := &Translator{bundles: make(map[language.Tag]map[string]string)}

	entries, err := embedded.ReadDir("messages")
	if err != nil {
		return nil, errors.Wrap(err, "reading embedded messages")
	}
	for _, e := range entries {
		data, err := embedded.ReadFile("messages/" + e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", e.Name())
		}
		if err := t.Load(data); err != nil {
			return nil, errors.Wrapf(err, "loading %s", e.Name())
		}
	}
	return t, nil
}

// Load merges a YAML bundle. Keys already present for the language are
// overwritten.
func (t *Translator) Load(data []byte) error {
	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return errors.Wrap(err, "decoding bundle")
	}

	tag, err := language.Parse(b.Lang)
	if err != nil {
		return errors.Wrapf(err, "bundle language %q", b.Lang)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	messages, ok := t.bundles[tag]
	if !ok {
		messages = make(map[string]string, len(b.Messages))
		t.bundles[tag] = messages
		t.tags = append(t.tags, tag)
	}
	for k, v := range b.Messages {
		messages[k] = v
	}

	// The first tag handed to the matcher is its default.
	sort.SliceStable(t.tags, func(i, j int) bool {
		return t.tags[i] == language.English && t.tags[j] != language.English
	})
	t.matcher = language.NewMatcher(t.tags)
	return nil
}

// LoadFile loads one bundle, or every *.yaml bundle when path is a
// directory.
func (t *Translator) LoadFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "loading messages")
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = filepath.Glob(filepath.Join(path, "*.yaml")); err != nil {
			return errors.Wrap(err, "loading messages")
		}
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return errors.Wrapf(err, "reading %s", f)
		}
		if err := t.Load(data); err != nil {
			return errors.Wrapf(err, "loading %s", f)
		}
	}
	return nil
}

// Languages lists the loaded languages, English first.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ret := make([]string, 0, len(t.tags))
	for _, tag := range t.tags {
		ret = append(ret, tag.String())
	}
	return ret
}

// Keys returns the sorted message keys of a language's bundle.
func (t *Translator) Keys(lang string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var ret []string
	for k := range t.bundles[language.Make(lang)] {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Localizer returns a localizer for the loaded language that best matches
// lang, which may be a BCP 47 tag or an Accept-Language style list.
func (t *Translator) Localizer(lang string) *Localizer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	preferred, _, _ := language.ParseAcceptLanguage(lang)
	if len(preferred) == 0 {
		preferred = []language.Tag{language.English}
	}

	_, index, _ := t.matcher.Match(preferred...)
	tag := t.tags[index]
	return &Localizer{
		tag:      tag,
		messages: t.bundles[tag],
		fallback: t.bundles[language.English],
	}
}

// Localizer renders messages in one language.
type Localizer struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

func (l *Localizer) Language() string {
	return l.tag.String()
}

// Text renders key with positional arguments replacing {0}, {1}, ... When
// no bundle knows the key, the key and its arguments are returned.
func (l *Localizer) Text(key string, args ...string) string {
	tmpl, ok := l.messages[key]
	if !ok {
		tmpl, ok = l.fallback[key]
	}
	if !ok {
		if len(args) == 0 {
			return key
		}
		return key + " [" + strings.Join(args, ", ") + "]"
	}

	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

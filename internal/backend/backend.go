/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package backend assembles the catalog, history index, permissions and
// message bundles behind a validator registry.
package backend

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/i18n"
	"github.com/dburkart/jql/pkg/query/validate"
	"github.com/dburkart/jql/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// History backends
const (
	HistoryCatalog    = "catalog"
	HistoryOpenSearch = "opensearch"
)

type Config struct {
	// Catalog is a YAML snapshot (.yaml, .yml) or a sqlite database.
	Catalog    string
	History    string
	OpenSearch history.OpenSearchConfig
	Messages   []string
}

type Backend struct {
	Registry   *validate.Registry
	Translator *i18n.Translator

	store *store.Store
}

// IsSnapshot reports whether path names a YAML catalog snapshot.
func IsSnapshot(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}

	var (
		cat catalog.Catalog
		idx history.Index
	)
	if IsSnapshot(cfg.Catalog) {
		snap, err := catalog.LoadSnapshotFile(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		cat, idx = snap, history.NewMemory(snap.ChangeList)
	} else {
		st, err := store.Open(cfg.Catalog, log)
		if err != nil {
			return nil, err
		}
		b.store = st
		cat, idx = st, st
	}

	switch cfg.History {
	case "", HistoryCatalog:
	case HistoryOpenSearch:
		remote, err := history.NewOpenSearch(ctx, cfg.OpenSearch)
		if err != nil {
			b.Close()
			return nil, err
		}
		idx = remote
	default:
		b.Close()
		return nil, errors.Errorf("unknown history backend %q", cfg.History)
	}

	permissions, err := catalog.NewPermissions()
	if err != nil {
		b.Close()
		return nil, err
	}

	b.Translator, err = i18n.New()
	if err != nil {
		b.Close()
		return nil, err
	}
	for _, path := range cfg.Messages {
		if err := b.Translator.LoadFile(path); err != nil {
			b.Close()
			return nil, err
		}
	}

	b.Registry = validate.NewRegistry(&validate.Services{
		Catalog:     cat,
		Permissions: permissions,
		History:     idx,
		Log:         log,
	})
	if err := b.Registry.Refresh(ctx); err != nil {
		b.Close()
		return nil, errors.Wrap(err, "loading custom fields")
	}

	log.Debug().
		Str("catalog", cfg.Catalog).
		Str("history", cfg.History).
		Strs("languages", b.Translator.Languages()).
		Msg("opened validation backend")

	return b, nil
}

// Store returns the sqlite store, or nil for a snapshot catalog.
func (b *Backend) Store() *store.Store {
	return b.store
}

func (b *Backend) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

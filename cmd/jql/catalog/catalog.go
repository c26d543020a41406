/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"context"
	"os"
	"time"

	"github.com/dburkart/jql/internal/backend"
	"github.com/dburkart/jql/internal/config"
	"github.com/dburkart/jql/pkg/catalog"
	"github.com/dburkart/jql/pkg/history"
	"github.com/dburkart/jql/pkg/report"
	"github.com/dburkart/jql/pkg/store"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the issue catalog queries are validated against",
}

var importCommand = &cobra.Command{
	Use:   "import <snapshot.yaml>",
	Short: "Import a catalog snapshot into the sqlite catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		db := settings.Catalog.Path
		if path := viper.GetString("import.db"); path != "" {
			db = path
		}
		if backend.IsSnapshot(db) {
			return errors.Errorf("catalog %s is a snapshot, import needs a database path", db)
		}

		snap, err := catalog.LoadSnapshotFile(args[0])
		if err != nil {
			return err
		}

		st, err := store.Open(db, log)
		if err != nil {
			return err
		}
		defer st.Close()

		start := time.Now()
		if err := st.Import(cmd.Context(), snap); err != nil {
			return err
		}

		if settings.History.Backend == backend.HistoryOpenSearch {
			if err := indexHistory(cmd.Context(), settings, snap.ChangeList); err != nil {
				return err
			}
		}

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().
			Str("catalog", db).
			Str("projects", humanize.Comma(int64(stats.Projects))).
			Str("issues", humanize.Comma(int64(stats.Issues))).
			Str("changes", humanize.Comma(int64(stats.Changes))).
			Dur("took", time.Since(start)).
			Msg("imported catalog snapshot")
		return nil
	},
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Print entity counts of the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		// Counting needs the catalog only
		cfg := settings.Backend()
		cfg.History = backend.HistoryCatalog
		b, err := backend.Open(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		stats, err := b.Registry.Services().Catalog.Stats(cmd.Context())
		if err != nil {
			return err
		}

		r := statsReport{Catalog: settings.Catalog.Path, Stats: stats}
		if info, err := os.Stat(settings.Catalog.Path); err == nil {
			r.Size = humanize.Bytes(uint64(info.Size()))
			r.Modified = humanize.Time(info.ModTime())
		}
		return report.NewOutputWriter(cmd.OutOrStdout(), viper.GetString("stats.output")).Write(r)
	},
}

func init() {
	importCommand.Flags().String("db", "", "Database to import into (default catalog.path)")
	statsCommand.Flags().StringP("output", "o", "text", "Output format: text, csv or json")

	viper.BindPFlag("import.db", importCommand.Flags().Lookup("db"))
	viper.BindPFlag("stats.output", statsCommand.Flags().Lookup("output"))

	Command.AddCommand(importCommand, statsCommand)
}

func indexHistory(ctx context.Context, settings config.Settings, changes []catalog.Change) error {
	cfg := settings.Backend().OpenSearch
	idx, err := history.NewOpenSearch(ctx, cfg)
	if err != nil {
		return err
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		return err
	}
	return idx.RecordChanges(ctx, changes)
}

type statsReport struct {
	Catalog  string        `json:"catalog"`
	Size     string        `json:"size,omitempty"`
	Modified string        `json:"modified,omitempty"`
	Stats    catalog.Stats `json:"stats"`
}

func (r statsReport) Headers() []string {
	return []string{"entity", "count"}
}

func (r statsReport) Values() [][]string {
	rows := [][]string{
		{"users", humanize.Comma(int64(r.Stats.Users))},
		{"groups", humanize.Comma(int64(r.Stats.Groups))},
		{"projects", humanize.Comma(int64(r.Stats.Projects))},
		{"versions", humanize.Comma(int64(r.Stats.Versions))},
		{"components", humanize.Comma(int64(r.Stats.Components))},
		{"issues", humanize.Comma(int64(r.Stats.Issues))},
		{"filters", humanize.Comma(int64(r.Stats.Filters))},
		{"custom fields", humanize.Comma(int64(r.Stats.CustomFields))},
		{"changes", humanize.Comma(int64(r.Stats.Changes))},
	}
	if r.Size != "" {
		rows = append(rows, []string{"size", r.Size}, []string{"modified", r.Modified})
	}
	return rows
}


/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package validate

import (
	"fmt"
	"io"
	"os"

	jql "github.com/dburkart/jql/api"
	"github.com/dburkart/jql/internal/config"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/query/clause"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/dburkart/jql/pkg/report"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var Command = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate query documents",
	Long: `Validate one or more YAML query documents. Each file may hold several
documents separated by "---". With no files, documents are read from stdin.

The command exits with status 2 when any query has errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		host := viper.GetString("jql.host")
		if remote := viper.GetString("validate.remote"); remote != "" {
			host = remote
		}
		client, err := jql.NewClient(
			settings.Target(host),
			jql.WithLogger(log),
			jql.WithBackend(settings.Backend()),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		queries, err := readQueries(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := report.NewOutputWriter(out, viper.GetString("validate.output"))
		failed := &message.ValidationError{}
		for _, q := range queries {
			if viper.GetBool("validate.dump") {
				fmt.Fprint(out, clause.Dump(q.Where))
			}

			doc, err := yaml.Marshal(q)
			if err != nil {
				return errors.Wrap(err, "encoding query")
			}
			rsp, err := client.Validate(proto.ValidateRequest{
				User:     viper.GetString("validate.user"),
				Locale:   viper.GetString("validate.locale"),
				FilterID: viper.GetInt64("validate.filter-id"),
				Document: string(doc),
			})
			if err != nil {
				return err
			}

			log.Debug().
				Str("request", rsp.RequestID).
				Bool("valid", rsp.Valid).
				Msg(rsp.Query)

			if err := w.Write(rsp); err != nil {
				return err
			}
			failed.Messages = append(failed.Messages, rsp.Errors...)
			failed.Reasons = append(failed.Reasons, rsp.Reasons...)
		}

		if len(failed.Messages) > 0 {
			return failed
		}
		return nil
	},
}

func init() {
	Command.Flags().StringP("user", "u", "", "Validate as this user (default anonymous)")
	Command.Flags().StringP("locale", "l", "", "Language of the rendered messages")
	Command.Flags().Int64("filter-id", 0, "Id of the saved filter being edited")
	Command.Flags().StringP("output", "o", "text", "Output format: text, csv or json")
	Command.Flags().Bool("dump", false, "Print the clause tree of each query")
	Command.Flags().String("remote", "", "Validate on a jql server (jql://host:port) instead of in-process")

	viper.BindPFlag("validate.user", Command.Flags().Lookup("user"))
	viper.BindPFlag("validate.locale", Command.Flags().Lookup("locale"))
	viper.BindPFlag("validate.filter-id", Command.Flags().Lookup("filter-id"))
	viper.BindPFlag("validate.output", Command.Flags().Lookup("output"))
	viper.BindPFlag("validate.dump", Command.Flags().Lookup("dump"))
	viper.BindPFlag("validate.remote", Command.Flags().Lookup("remote"))
}

func readQueries(files []string) ([]*clause.Query, error) {
	if len(files) == 0 {
		return decode(os.Stdin, "stdin")
	}

	var queries []*clause.Query
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening query file")
		}
		qs, err := decode(f, path)
		f.Close()
		if err != nil {
			return nil, err
		}
		queries = append(queries, qs...)
	}
	return queries, nil
}

func decode(r io.Reader, name string) ([]*clause.Query, error) {
	qs, err := clause.DecodeAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return qs, nil
}

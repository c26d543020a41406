/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package jql

import (
	"fmt"
	"os"

	"github.com/dburkart/jql/cmd/jql/bench"
	"github.com/dburkart/jql/cmd/jql/catalog"
	"github.com/dburkart/jql/cmd/jql/server"
	"github.com/dburkart/jql/cmd/jql/shell"
	"github.com/dburkart/jql/cmd/jql/validate"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version        = "develop"
	CommitHash     = "n/a"
	BuildTimestamp = "n/a"

	rootCmd = &cobra.Command{
		Use:   "jql",
		Short: "jql validates JQL clause trees against an issue catalog",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging()
			initLogLevel()
			initConfig(cmd.Root().PersistentFlags().Lookup("config").Value.String())
			traceConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
)

func init() {
	// Configure the root binary options
	rootCmd.PersistentFlags().CountP("verbose", "v", "-v for debug logs (-vv for trace)")
	rootCmd.PersistentFlags().Bool("local", true, "Configures the logger to print readable logs")
	rootCmd.PersistentFlags().StringP("host", "H", "", "Server (jql://host:port) or catalog file to validate against (default catalog.path)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the jql config file (default ./config/jql.toml)")
	rootCmd.PersistentFlags().StringP("catalog", "d", "./jql.db", "Catalog snapshot (.yaml) or sqlite database")

	// Bind viper config to the root flags
	viper.BindPFlag("jql.local", rootCmd.PersistentFlags().Lookup("local"))
	viper.BindPFlag("jql.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("jql.host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.SetVersionTemplate(fmt.Sprintf("jql version: %s git_commit: %s build_time: %s\n", Version, CommitHash, BuildTimestamp))

	viper.AutomaticEnv()

	// Register commands on the root binary command
	for _, c := range []*cobra.Command{validate.Command, shell.Command, server.Command, catalog.Command, bench.Command} {
		c.Version = rootCmd.Version
		rootCmd.AddCommand(c)
	}
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var invalid *message.ValidationError
	if errors.As(err, &invalid) {
		os.Exit(2)
	}
	log.Error().Err(err).Msg("root command failed")
	os.Exit(1)
}

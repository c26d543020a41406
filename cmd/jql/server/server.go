/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dburkart/jql/internal/backend"
	"github.com/dburkart/jql/internal/config"
	"github.com/dburkart/jql/pkg/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "server",
	Short: "Serve query validation over the jql line protocol",

	RunE: func(cmd *cobra.Command, args []string) error {
		logger := viper.Get("logger").(zerolog.Logger)

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := backend.Open(ctx, settings.Backend(), logger)
		if err != nil {
			return err
		}
		defer b.Close()

		srv := server.New(logger, b.Registry, b.Translator, server.Config{
			Port:        settings.Server.Port,
			MetricsPort: settings.Server.PromPort,
			Version:     cmd.Version,
		})

		// Serve the metrics endpoint
		go func() {
			if err := srv.ServeMetrics(ctx); err != nil {
				logger.Error().Err(err).Msg("metrics endpoint stopped")
			}
		}()

		// Serve validation until interrupted
		err = srv.ServeValidation(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	// Flags for this command
	Command.Flags().IntP("port", "p", 8001, "Validation server port")
	Command.Flags().Int("prom-port", 2112, "Set the port for /metrics")

	// Bind flags to viper
	viper.BindPFlag("server.port", Command.Flags().Lookup("port"))
	viper.BindPFlag("server.prom-port", Command.Flags().Lookup("prom-port"))
}

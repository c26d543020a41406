/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package bench

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	jql "github.com/dburkart/jql/api"
	"github.com/dburkart/jql/internal/config"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "bench <query.yaml>",
	Short: "Send a query document to a server repeatedly and report throughput",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		doc, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "reading query document")
		}

		workers := viper.GetInt("bench.workers")
		if workers < 1 {
			return errors.New("bench needs at least one worker")
		}
		client, err := jql.NewClientPool(
			settings.Target(viper.GetString("jql.host")),
			uint(workers),
			jql.WithLogger(log),
			jql.WithBackend(settings.Backend()),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		req := proto.ValidateRequest{
			User:     viper.GetString("bench.user"),
			Document: string(doc),
		}
		r := run(client, req, workers, viper.GetInt("bench.count"))

		log.Info().
			Str("requests", humanize.Comma(r.requests)).
			Str("failures", humanize.Comma(r.failures)).
			Str("dur", r.elapsed.String()).
			Str("rate", humanize.CommafWithDigits(r.rate(), 1)+"/s").
			Msg("bench complete")
		if r.failures > 0 {
			return errors.Errorf("%d of %d requests failed", r.failures, r.requests)
		}
		return nil
	},
}

func init() {
	// Flags for this command
	Command.Flags().Int("count", 1000, "Number of validations to send")
	Command.Flags().Int("workers", 4, "Number of concurrent connections")
	Command.Flags().StringP("user", "u", "", "Validate as this user")

	// Bind flags to viper
	viper.BindPFlag("bench.count", Command.Flags().Lookup("count"))
	viper.BindPFlag("bench.workers", Command.Flags().Lookup("workers"))
	viper.BindPFlag("bench.user", Command.Flags().Lookup("user"))
}

type result struct {
	requests int64
	failures int64
	elapsed  time.Duration
}

func (r result) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.requests) / r.elapsed.Seconds()
}

// run sends count validations of req split across workers goroutines.
func run(client jql.Client, req proto.ValidateRequest, workers, count int) result {
	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		failures atomic.Int64
	)

	t := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for next.Add(1) <= int64(count) {
				if _, err := client.Validate(req); err != nil {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	return result{
		requests: int64(count),
		failures: failures.Load(),
		elapsed:  time.Since(t),
	}
}

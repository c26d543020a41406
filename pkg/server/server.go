/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dburkart/jql/pkg/i18n"
	"github.com/dburkart/jql/pkg/query/validate"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Config struct {
	Port        int
	MetricsPort int
	Version     string
}

type Server struct {
	log     zerolog.Logger
	metrics MetricsStore
	handler *Handler

	port        int
	metricsPort int
}

func New(log zerolog.Logger, registry *validate.Registry, translator *i18n.Translator, cfg Config) *Server {
	metrics := NewMetricsStore()
	metrics.RegisterCollector(NewCatalogStatsCollector(registry.Services().Catalog))

	return &Server{
		log:         log,
		metrics:     metrics,
		handler:     NewHandler(log, registry, translator, cfg.Version, validate.WithObserver(metrics)),
		port:        cfg.Port,
		metricsPort: cfg.MetricsPort,
	}
}

func (s *Server) Metrics() MetricsStore {
	return s.metrics
}

// Mux returns the instrumented command mux.
func (s *Server) Mux() MessageMux {
	return s.handler.Mux(Instrument(s.metrics))
}

// ServeValidation runs the line protocol listener until ctx is done.
func (s *Server) ServeValidation(ctx context.Context) error {
	srv := NewMessageServer(s.log, s.metrics)
	return srv.ListenAndServe(ctx, s.port, s.Mux())
}

// ServeMetrics runs the /metrics endpoint until ctx is done.
func (s *Server) ServeMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.metricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	s.log.Info().Int("port", s.metricsPort).Msg("/metrics endpoint started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving metrics")
	}
	return nil
}

/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/query/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsStore interface {
	Registry() *prometheus.Registry
	RegisterCollector(c prometheus.Collector)
	Handler() http.Handler

	// Collection
	IncClientConnection()
	IncRequests(cmd string)
	ObserveResponseNS(cmd string, t int64)

	// Validation
	ObserveValidation(messages *message.Set, elapsed time.Duration)
}

type metricsStore struct {
	registry          *prometheus.Registry
	ClientConnections prometheus.Counter
	Requests          *prometheus.CounterVec
	ResponseNS        *prometheus.HistogramVec
	Validations       *prometheus.CounterVec
	Messages          *prometheus.CounterVec
	ValidationNS      prometheus.Histogram
}

var (
	CommandLabel = "cmd"
	OutcomeLabel = "outcome"
	LevelLabel   = "level"
	KeyLabel     = "key"
)

// Validation outcomes
const (
	OutcomeValid   = "valid"
	OutcomeWarning = "warning"
	OutcomeInvalid = "invalid"
)

func NewMetricsStore() MetricsStore {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsAll),
		),
	)

	buckets := []float64{}
	for i := 1; i < 20; i++ {
		buckets = append(buckets, float64(2*i*int(time.Millisecond)))
	}

	factory := promauto.With(reg)
	return &metricsStore{
		registry: reg,
		ClientConnections: factory.NewCounter(prometheus.CounterOpts{
			Name: "jql_client_connections",
			Help: "The total number of client connections",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jql_requests",
			Help: "Request counts for the protocol commands",
		}, []string{CommandLabel}),
		ResponseNS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jql_response_ns",
			Help:    "Response times of protocol commands",
			Buckets: buckets,
		}, []string{CommandLabel}),
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jql_validations",
			Help: "Validated queries by outcome",
		}, []string{OutcomeLabel}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jql_validation_messages",
			Help: "Validation messages by level and key",
		}, []string{LevelLabel, KeyLabel}),
		ValidationNS: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jql_validation_ns",
			Help:    "Time spent validating a single query",
			Buckets: prometheus.ExponentialBuckets(float64(50*time.Microsecond), 2, 14),
		}),
	}
}

func (ms *metricsStore) Registry() *prometheus.Registry {
	return ms.registry
}

func (ms *metricsStore) RegisterCollector(c prometheus.Collector) {
	ms.registry.MustRegister(c)
}

func (ms *metricsStore) Handler() http.Handler {
	return promhttp.HandlerFor(ms.Registry(), promhttp.HandlerOpts{Registry: ms.Registry()})
}

func (ms *metricsStore) IncClientConnection() {
	ms.ClientConnections.Inc()
}

func (ms *metricsStore) IncRequests(cmd string) {
	ms.Requests.With(prometheus.Labels{CommandLabel: cmd}).Inc()
}

func (ms *metricsStore) ObserveResponseNS(cmd string, t int64) {
	ms.ResponseNS.
		With(prometheus.Labels{CommandLabel: cmd}).
		Observe(float64(t))
}

func (ms *metricsStore) ObserveValidation(messages *message.Set, elapsed time.Duration) {
	outcome := OutcomeValid
	switch {
	case messages.HasAnyErrors():
		outcome = OutcomeInvalid
	case messages.HasAnyWarnings():
		outcome = OutcomeWarning
	}
	ms.Validations.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()

	for _, m := range messages.Errors() {
		ms.Messages.With(prometheus.Labels{LevelLabel: "error", KeyLabel: m.Key}).Inc()
	}
	for _, m := range messages.Warnings() {
		ms.Messages.With(prometheus.Labels{LevelLabel: "warning", KeyLabel: m.Key}).Inc()
	}
	ms.ValidationNS.Observe(float64(elapsed.Nanoseconds()))
}

// Instrument counts and times every command served through a mux.
func Instrument(metrics MetricsStore) Middleware {
	return func(cmd string, next HandleMessage) HandleMessage {
		return func(ctx context.Context, w io.Writer, msg proto.Message) {
			start := time.Now()
			metrics.IncRequests(cmd)
			next(ctx, w, msg)
			metrics.ObserveResponseNS(cmd, time.Since(start).Nanoseconds())
		}
	}
}

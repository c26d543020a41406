/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"time"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
)

// collectTimeout bounds the catalog read behind a single scrape.
const collectTimeout = 5 * time.Second

type catalogStatsCollector struct {
	catalog catalog.Catalog

	projects     *prometheus.Desc
	filters      *prometheus.Desc
	customFields *prometheus.Desc
	users        *prometheus.Desc
	issues       *prometheus.Desc
	changes      *prometheus.Desc
}

func NewCatalogStatsCollector(c catalog.Catalog) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("jql_catalog_"+name, help, nil, nil)
	}
	return &catalogStatsCollector{
		catalog:      c,
		projects:     desc("projects", "Number of projects in the catalog."),
		filters:      desc("filters", "Number of saved filters in the catalog."),
		customFields: desc("custom_fields", "Number of custom fields in the catalog."),
		users:        desc("users", "Number of users in the catalog."),
		issues:       desc("issues", "Number of issues in the catalog."),
		changes:      desc("changes", "Number of recorded field changes."),
	}
}

// Describe implements Collector.
func (c *catalogStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.projects
	ch <- c.filters
	ch <- c.customFields
	ch <- c.users
	ch <- c.issues
	ch <- c.changes
}

// Collect implements Collector.
func (c *catalogStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.catalog.Stats(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.projects, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.projects, prometheus.GaugeValue, float64(stats.Projects))
	ch <- prometheus.MustNewConstMetric(c.filters, prometheus.GaugeValue, float64(stats.Filters))
	ch <- prometheus.MustNewConstMetric(c.customFields, prometheus.GaugeValue, float64(stats.CustomFields))
	ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(stats.Users))
	ch <- prometheus.MustNewConstMetric(c.issues, prometheus.GaugeValue, float64(stats.Issues))
	ch <- prometheus.MustNewConstMetric(c.changes, prometheus.GaugeValue, float64(stats.Changes))
}

/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package config decodes and checks the settings read by viper.
package config

import (
	"reflect"
	"strings"

	"github.com/dburkart/jql/internal/backend"
	"github.com/dburkart/jql/pkg/history"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Settings struct {
		Catalog Catalog `mapstructure:"catalog"`
		History History `mapstructure:"history"`
		Server  Server  `mapstructure:"server"`
	}

	Catalog struct {
		Path     string   `mapstructure:"path" validate:"required"`
		Messages []string `mapstructure:"messages" validate:"dive,required"`
	}

	History struct {
		Backend    string     `mapstructure:"backend" validate:"oneof=catalog opensearch"`
		OpenSearch OpenSearch `mapstructure:"opensearch"`
	}

	OpenSearch struct {
		Addresses  []string `mapstructure:"addresses" validate:"dive,url"`
		Username   string   `mapstructure:"username"`
		Password   string   `mapstructure:"password"`
		Index      string   `mapstructure:"index"`
		MaxRetries int      `mapstructure:"max-retries" validate:"min=0,max=10"`
	}

	Server struct {
		Port     int `mapstructure:"port" validate:"min=1,max=65535"`
		PromPort int `mapstructure:"prom-port" validate:"min=1,max=65535,nefield=Port"`
	}
)

// Defaults registers the default value of every setting on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "./jql.db")
	v.SetDefault("history.backend", backend.HistoryCatalog)
	v.SetDefault("history.opensearch.index", history.DefaultIndexName)
	v.SetDefault("history.opensearch.max-retries", 3)
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.prom-port", 2112)
}

// Load decodes the settings held by v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "decoding settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		h := sl.Current().Interface().(History)
		if h.Backend == backend.HistoryOpenSearch && len(h.OpenSearch.Addresses) == 0 {
			sl.ReportError(h.OpenSearch.Addresses, "addresses", "Addresses", "required_with_opensearch", "")
		}
	}, History{})
	return v
}

// Validate checks s, reporting every failing setting by its config key.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return errors.Wrap(err, "validating settings")
	}
	problems := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		problem := key + ": " + fe.Tag()
		if fe.Param() != "" {
			problem += "=" + fe.Param()
		}
		problems = append(problems, problem)
	}
	return errors.Errorf("invalid settings: %s", strings.Join(problems, ", "))
}

// Backend returns the backend configuration for the settings.
func (s Settings) Backend() backend.Config {
	return backend.Config{
		Catalog: s.Catalog.Path,
		History: s.History.Backend,
		OpenSearch: history.OpenSearchConfig{
			Addresses:  s.History.OpenSearch.Addresses,
			Username:   s.History.OpenSearch.Username,
			Password:   s.History.OpenSearch.Password,
			Index:      s.History.OpenSearch.Index,
			MaxRetries: s.History.OpenSearch.MaxRetries,
		},
		Messages: s.Catalog.Messages,
	}
}

// Target returns the connection string clients should use: host when set,
// otherwise the configured catalog.
func (s Settings) Target(host string) string {
	if host != "" {
		return host
	}
	return s.Catalog.Path
}

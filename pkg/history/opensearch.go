/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/dburkart/jql/pkg/catalog"
	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/pkg/errors"
)

const DefaultIndexName = "jql-history"

type OpenSearchConfig struct {
	Addresses  []string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

// OpenSearch is an Index stored in an OpenSearch cluster, one document per
// field/value pair.
type OpenSearch struct {
	client *opensearch.Client
	index  string
}

type valueDocument struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "field": {"type": "keyword"},
      "value": {"type": "keyword"}
    }
  }
}`

// NewOpenSearch connects and checks that the cluster answers.
func NewOpenSearch(ctx context.Context, cfg OpenSearchConfig) (*OpenSearch, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndexName
	}

	o := &OpenSearch{client: client, index: index}
	if err := o.Healthcheck(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *OpenSearch) Healthcheck(ctx context.Context) error {
	res, err := o.client.Info(o.client.Info.WithContext(ctx))
	return check(res, err, "info")
}

func check(res *opensearchapi.Response, err error, op string) error {
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "%s: %s", op, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Wrapf(ErrUnavailable, "%s: %s", op, res.Status())
	}
	return nil
}

// EnsureIndex creates the index with keyword mappings when it is missing.
func (o *OpenSearch) EnsureIndex(ctx context.Context) error {
	res, err := o.client.Indices.Exists([]string{o.index}, o.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "exists: %s", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = o.client.Indices.Create(o.index,
		o.client.Indices.Create.WithContext(ctx),
		o.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	return check(res, err, "create index")
}

func (o *OpenSearch) ValueExisted(ctx context.Context, field, value string) (bool, error) {
	field, ok := CanonicalField(field)
	if !ok {
		return false, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]string{"field": field}},
					map[string]interface{}{"term": map[string]string{"value": catalog.Fold(value)}},
				},
			},
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "encoding count query")
	}

	res, err := o.client.Count(
		o.client.Count.WithContext(ctx),
		o.client.Count.WithIndex(o.index),
		o.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return false, errors.Wrapf(ErrUnavailable, "count: %s", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, errors.Wrapf(ErrUnavailable, "count: %s", res.Status())
	}

	var count struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&count); err != nil {
		return false, errors.Wrapf(ErrUnavailable, "decoding count: %s", err)
	}
	return count.Count > 0, nil
}

// Record indexes one field/value pair. The document id is a name based
// uuid of the pair, so recording the same value twice is idempotent.
func (o *OpenSearch) Record(ctx context.Context, field, value string) error {
	field, ok := CanonicalField(field)
	if !ok || value == "" {
		return nil
	}

	doc := valueDocument{Field: field, Value: catalog.Fold(value)}
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding value document")
	}

	res, err := o.client.Index(o.index, bytes.NewReader(body),
		o.client.Index.WithContext(ctx),
		o.client.Index.WithDocumentID(documentID(doc)),
	)
	return check(res, err, "index")
}

// RecordChanges indexes every value of the given changes.
func (o *OpenSearch) RecordChanges(ctx context.Context, changes []catalog.Change) error {
	for _, c := range changes {
		for _, v := range Values(c) {
			if err := o.Record(ctx, c.Field, v); err != nil {
				return err
			}
		}
	}

	res, err := o.client.Indices.Refresh(
		o.client.Indices.Refresh.WithContext(ctx),
		o.client.Indices.Refresh.WithIndex(o.index),
	)
	return check(res, err, "refresh")
}

func documentID(doc valueDocument) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(doc.Field+"\x00"+doc.Value)).String()
}

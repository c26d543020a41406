/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2023-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var Protocol = "jql"

type ConnectionString struct {
	Local   bool
	Address string
	Catalog string
}

// ParseConnectionString takes a connection string and parses it into the parts
// the application needs to make a connection. It will only return an error if
// the protocol is not "jql" or "file", or a remote string names a path.
//
// Formats:
//
//	./path/to/catalog.db
//	file://./path/to/catalog.yaml
//	jql://<host:port>
func ParseConnectionString(connStr string) (ConnectionString, error) {
	ret := ConnectionString{
		Local:   true,
		Address: "local",
	}

	if connStr == "" {
		connStr = "./jql.db"
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return ConnectionString{}, errors.Wrap(err, "parsing connection string")
	}

	// Handle the local case
	if u.Scheme == "" || u.Scheme == "file" {
		ret.Catalog = u.Host + u.Path
		return ret, nil
	}

	if u.Scheme == Protocol {
		if u.Host == "" {
			return ConnectionString{}, errors.Errorf("missing host in %s", connStr)
		}
		if strings.Trim(u.Path, "/") != "" {
			return ConnectionString{}, errors.Errorf("unexpected path %s", u.Path)
		}
		ret.Local = false
		ret.Address = u.Host
		return ret, nil
	}

	return ConnectionString{}, errors.Errorf("unrecognized scheme: %s", u.Scheme)
}

// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	"github.com/lib/pq"
)

// PostgresFactory builds a ConnectionFactory backed by lib/pq's native
// driver.Connector.
func PostgresFactory(dsn string) (ConnectionFactory, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, &CreateFailedError{Cause: err}
	}
	return connectorFactory{connector: connector}, nil
}

// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	mssql "github.com/microsoft/go-mssqldb"
)

// SQLServerFactory builds a ConnectionFactory backed by
// microsoft/go-mssqldb's native driver.Connector.
func SQLServerFactory(dsn string) (ConnectionFactory, error) {
	connector, err := mssql.NewConnector(dsn)
	if err != nil {
		return nil, &CreateFailedError{Cause: err}
	}
	return connectorFactory{connector: connector}, nil
}

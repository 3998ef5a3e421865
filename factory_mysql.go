// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	"github.com/go-sql-driver/mysql"
)

// MySQLFactory builds a ConnectionFactory backed by go-sql-driver/mysql's
// native driver.Connector, avoiding the DSN-parsing-per-Connect overhead
// that dialing through database/sql's driver registry would incur.
func MySQLFactory(cfg *mysql.Config) (ConnectionFactory, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, &CreateFailedError{Cause: err}
	}
	return connectorFactory{connector: connector}, nil
}

// MySQLFactoryFromDSN is a convenience wrapper for callers who already have
// a DSN string rather than a *mysql.Config.
func MySQLFactoryFromDSN(dsn string) (ConnectionFactory, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, &CreateFailedError{Cause: err}
	}
	return MySQLFactory(cfg)
}

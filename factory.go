// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	"context"
	"database/sql/driver"
)

// ConnectionFactory produces raw driver connections for a pool to manage.
// Reference implementations for MySQL, PostgreSQL, and SQL Server wrap that
// driver's native driver.Connector; GenericConnectorFactory wraps any
// driver.Connector a caller already has in hand.
type ConnectionFactory interface {
	// Create opens one new raw connection.
	Create(ctx context.Context) (driver.Conn, error)
}

// connectorFactory adapts a driver.Connector to ConnectionFactory. It is the
// shared implementation behind every reference factory in this package: the
// only thing that differs between MySQL, PostgreSQL, and SQL Server is how
// the driver.Connector gets built.
type connectorFactory struct {
	connector driver.Connector
}

func (f connectorFactory) Create(ctx context.Context) (driver.Conn, error) {
	return f.connector.Connect(ctx)
}

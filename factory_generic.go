package beecp

import "database/sql/driver"

// GenericConnectorFactory wraps any caller-supplied driver.Connector. It is
// the path for drivers this module does not import directly (Oracle,
// Snowflake, SQLite, or anything else exposing a driver.Connector), and is
// exactly what MySQLFactory/PostgresFactory/SQLServerFactory reduce to
// internally.
func GenericConnectorFactory(connector driver.Connector) ConnectionFactory {
	return connectorFactory{connector: connector}
}

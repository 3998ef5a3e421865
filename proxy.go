// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import (
	"context"
	"database/sql/driver"
	"sync"
)

// Proxy is the handle Acquire returns to callers. Its Close drives the
// pool's return path instead of actually closing the underlying connection.
// Every method checks closed first and every exit that finishes using the
// connection flips it exactly once, the same guard shape the teacher uses
// on its transaction type.
type Proxy struct {
	mu     sync.Mutex
	closed bool

	pool *Pool
	conn *PooledConnection
}

func newProxy(pool *Pool, conn *PooledConnection) *Proxy {
	px := &Proxy{pool: pool, conn: conn}
	conn.proxy.Store(px)
	return px
}

// Raw returns the underlying driver.Conn. Panics if called after Close.
func (px *Proxy) Raw() driver.Conn {
	px.mu.Lock()
	defer px.mu.Unlock()
	if px.closed {
		panic("beecp: use of Proxy after Close")
	}
	return px.conn.raw
}

// Ping forwards to the underlying connection if it implements
// driver.Pinger, otherwise reports no error (nothing to check).
func (px *Proxy) Ping(ctx context.Context) error {
	px.mu.Lock()
	defer px.mu.Unlock()
	if px.closed {
		return &ProxyMissingError{Reason: "proxy already closed"}
	}
	pinger, ok := px.conn.raw.(driver.Pinger)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		px.markBrokenLocked()
		return err
	}
	return nil
}

// QueryContext forwards to the underlying connection's driver.QueryerContext
// if it implements one.
func (px *Proxy) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	px.mu.Lock()
	defer px.mu.Unlock()
	if px.closed {
		return nil, &ProxyMissingError{Reason: "proxy already closed"}
	}
	qc, ok := px.conn.raw.(driver.QueryerContext)
	if !ok {
		return nil, &ProxyMissingError{Reason: "underlying connection does not implement driver.QueryerContext"}
	}
	rows, err := qc.QueryContext(ctx, query, args)
	if err != nil {
		px.markBrokenLocked()
		return nil, err
	}
	return rows, nil
}

// ExecContext forwards to the underlying connection's driver.ExecerContext
// if it implements one.
func (px *Proxy) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	px.mu.Lock()
	defer px.mu.Unlock()
	if px.closed {
		return nil, &ProxyMissingError{Reason: "proxy already closed"}
	}
	ec, ok := px.conn.raw.(driver.ExecerContext)
	if !ok {
		return nil, &ProxyMissingError{Reason: "underlying connection does not implement driver.ExecerContext"}
	}
	result, err := ec.ExecContext(ctx, query, args)
	if err != nil {
		px.markBrokenLocked()
		return nil, err
	}
	return result, nil
}

// broken records that the wrapped connection failed a forwarded call and
// should be abandoned rather than recycled.
func (px *Proxy) markBrokenLocked() {
	px.conn.setState(connClosed)
}

// Close returns the connection to the pool. It is safe to call multiple
// times; only the first call has effect.
func (px *Proxy) Close() error {
	px.mu.Lock()
	if px.closed {
		px.mu.Unlock()
		return nil
	}
	px.closed = true
	conn := px.conn
	px.mu.Unlock()

	conn.proxy.Store(nil)
	if conn.State() == connClosed {
		px.pool.abandonOnReturn(conn)
		return nil
	}
	return px.pool.Recycle(conn)
}

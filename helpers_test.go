package beecp_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/HawksSam/beecp"
)

// fakeConn is a minimal driver.Conn + driver.Pinger double used across the
// black-box test suite. It never talks to a real database.
type fakeConn struct {
	id int

	mu     sync.Mutex
	closed bool
	alive  bool
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("fakeConn: Prepare not supported")
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakeConn: Begin not supported")
}

// Ping implements driver.Pinger.
func (c *fakeConn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return errors.New("fakeConn: not alive")
	}
	return nil
}

func (c *fakeConn) kill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeConnector implements driver.Connector over fakeConn, with knobs to
// simulate factory failure and to track how many connections it has made.
type fakeConnector struct {
	fail    atomic.Bool
	created atomic.Int32

	mu    sync.Mutex
	conns []*fakeConn
}

func (f *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if f.fail.Load() {
		return nil, errors.New("fakeConnector: connect failed")
	}
	n := int(f.created.Add(1))
	c := &fakeConn{id: n, alive: true}
	f.mu.Lock()
	f.conns = append(f.conns, c)
	f.mu.Unlock()
	return c, nil
}

func (f *fakeConnector) Driver() driver.Driver {
	return fakeDriver{}
}

func (f *fakeConnector) setFail(v bool) {
	f.fail.Store(v)
}

func (f *fakeConnector) all() []*fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*fakeConn, len(f.conns))
	copy(out, f.conns)
	return out
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{alive: true}, nil
}

// newTestPool builds a Pool over a fakeConnector with configurable overrides.
// Callers get back the pool and the connector so they can kill connections
// or force creation failures mid-test.
func newTestPool(t *testing.T, mutate func(cfg *beecp.Config)) (*beecp.Pool, *fakeConnector) {
	connector := &fakeConnector{}
	cfg := beecp.Config{
		Factory: beecp.GenericConnectorFactory(connector),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	pool, err := beecp.Open(cfg)
	if err != nil {
		t.Fatalf("beecp.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool, connector
}

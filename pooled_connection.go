package beecp

import (
	"database/sql/driver"
	"sync/atomic"
	"time"
)

// connState is a PooledConnection's lifecycle state.
type connState int32

const (
	connIdle connState = iota
	connUsing
	connClosed
)

func (s connState) String() string {
	switch s {
	case connIdle:
		return "idle"
	case connUsing:
		return "using"
	case connClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connDefaults holds the per-connection settings taken from Config when the
// connection is created. They are recorded only: nothing applies them to the
// raw connection or restores them on recycle.
type connDefaults struct {
	autoCommit         bool
	readOnly           bool
	catalog            string
	schema             string
	isolationLevelCode int
}

// PooledConnection owns one raw driver.Conn plus the bookkeeping the
// transfer engine needs: its state, the time it was last touched, and a
// back-reference to whichever Proxy currently wraps it.
type PooledConnection struct {
	pool *Pool
	raw  driver.Conn

	state connState // accessed only via atomic ops below

	lastAccess int64 // unix nanoseconds, accessed via atomic ops
	defaults   connDefaults

	proxy atomic.Pointer[Proxy]
}

func newPooledConnection(pool *Pool, raw driver.Conn, defaults connDefaults) *PooledConnection {
	p := &PooledConnection{
		pool:     pool,
		raw:      raw,
		defaults: defaults,
	}
	p.touch()
	return p
}

// State returns the connection's current state.
func (p *PooledConnection) State() connState {
	return connState(atomic.LoadInt32((*int32)(&p.state)))
}

// casState attempts to move the connection from from to to, returning
// whether it succeeded.
func (p *PooledConnection) casState(from, to connState) bool {
	return atomic.CompareAndSwapInt32((*int32)(&p.state), int32(from), int32(to))
}

func (p *PooledConnection) setState(to connState) {
	atomic.StoreInt32((*int32)(&p.state), int32(to))
}

func (p *PooledConnection) touch() {
	atomic.StoreInt64(&p.lastAccess, time.Now().UnixNano())
}

func (p *PooledConnection) idleFor() time.Duration {
	last := atomic.LoadInt64(&p.lastAccess)
	return time.Since(time.Unix(0, last))
}

// Raw returns the underlying driver connection. It is only valid to use
// while the connection is in the Using state under the caller's own proxy.
func (p *PooledConnection) Raw() driver.Conn {
	return p.raw
}

func (p *PooledConnection) closeRaw() error {
	return p.raw.Close()
}

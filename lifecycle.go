package beecp

import (
	"context"
	"os"
	"os/signal"
	"time"
)

// init creates InitialSize connections and moves the pool to Normal, then
// starts the servant and idle-scan background goroutines.
func (p *Pool) init() error {
	for i := 0; i < p.cfg.InitialSize; i++ {
		if _, err := p.createPooledConn(context.Background(), connIdle); err != nil {
			p.removeAll(true, "init failed")
			return err
		}
	}
	p.state.Store(int32(StateNormal))
	p.servantSt.Store(int32(servantWorking))
	go p.runServant()
	go p.runIdleScan()
	return nil
}

// createPooledConn asks the factory for a new raw connection and wraps it.
// Serialized by createMu so the first-creation probe (tester selection)
// only ever runs once without extra synchronization elsewhere.
func (p *Pool) createPooledConn(ctx context.Context, initial connState) (*PooledConnection, error) {
	p.createMu.Lock()
	defer p.createMu.Unlock()

	if p.conns.len() >= p.cfg.PoolMaxSize {
		return nil, nil
	}

	if err := p.hooks.run(ctx, BeforeCreate, nil); err != nil {
		p.tracef("%v", err)
	}

	raw, err := p.cfg.Factory.Create(ctx)
	if err != nil {
		return nil, &CreateFailedError{Cause: err}
	}

	p.testerOnce.Do(func() {
		t := selectTester(raw, p.cfg.ConnectionTestSQL, p.cfg.ConnectionTestTimeout)
		p.liveTester.Store(&testerBox{t: t})
	})

	defaults := connDefaults{
		autoCommit:         p.cfg.DefaultAutoCommit,
		readOnly:           p.cfg.DefaultReadOnly,
		catalog:            p.cfg.DefaultCatalog,
		schema:             p.cfg.DefaultSchema,
		isolationLevelCode: p.cfg.DefaultTransactionIsolationCode,
	}
	conn := newPooledConnection(p, raw, defaults)
	conn.setState(initial)
	p.conns.add(conn)

	if err := p.hooks.run(ctx, AfterCreate, conn); err != nil {
		p.tracef("%v", err)
	}
	p.tracef("created connection, pool size now %d", p.conns.len())
	return conn, nil
}

// removePooledConn evicts conn from the pool, releases any Proxy still bound
// to it (marking that Proxy closed, so its later Close is a no-op), and
// closes its raw handle.
func (p *Pool) removePooledConn(conn *PooledConnection, reason string) {
	conn.setState(connClosed)
	if err := p.hooks.run(context.Background(), BeforeRemove, conn); err != nil {
		p.tracef("%v", err)
	}
	p.conns.remove(conn)
	if px := conn.proxy.Swap(nil); px != nil {
		px.mu.Lock()
		px.closed = true
		px.mu.Unlock()
	}
	if err := conn.closeRaw(); err != nil {
		p.tracef("error closing removed connection (%s): %v", reason, err)
	}
	if err := p.hooks.run(context.Background(), AfterRemove, conn); err != nil {
		p.tracef("%v", err)
	}
	p.tracef("removed connection (%s), pool size now %d", reason, p.conns.len())
}

// removeAll closes every connection currently in the pool. If force is
// false, Using connections are left alone until they're returned; Clear
// polls at DelayForNextClear until the pool is fully drained or force
// becomes true on a later call.
func (p *Pool) removeAll(force bool, reason string) {
	for _, conn := range p.conns.load() {
		if force || conn.State() != connUsing {
			p.removePooledConn(conn, reason)
		}
	}
}

// Clear empties the pool and recreates InitialSize fresh connections. If
// force is false it waits for in-use connections to be returned naturally,
// polling every DelayForNextClear; if force is true (or
// Config.ForceCloseUsingOnClear is set) in-use connections are closed
// immediately out from under their callers.
func (p *Pool) Clear(ctx context.Context, force bool) error {
	if !p.state.CompareAndSwap(int32(StateNormal), int32(StateClearing)) {
		return &PoolClosedError{State: p.currentState()}
	}
	defer p.state.Store(int32(StateNormal))

	force = force || p.cfg.ForceCloseUsingOnClear
	for {
		p.removeAll(force, "clear")
		if p.conns.len() == 0 || force {
			break
		}
		select {
		case <-ctx.Done():
			return &RequestInterruptError{Cause: ctx.Err()}
		case <-time.After(p.cfg.DelayForNextClear):
		}
	}

	for i := 0; i < p.cfg.InitialSize; i++ {
		if _, err := p.createPooledConn(ctx, connIdle); err != nil {
			return err
		}
	}
	p.broadcastException(&PoolClosedError{State: StateClearing})
	return nil
}

// Close shuts the pool down permanently: it stops the background workers,
// closes every connection, and wakes any waiter with a terminal error.
// Close is idempotent and safe to call more than once.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		if err := p.hooks.run(context.Background(), BeforeClose, nil); err != nil {
			p.tracef("%v", err)
		}
		p.state.Store(int32(StateClosed))
		p.servantSt.Store(int32(servantExit))
		p.pokeServant()
		close(p.idleStop)
		<-p.servantDone
		<-p.idleDone
		p.removeAll(true, "pool closed")
		p.broadcastException(&PoolClosedError{State: StateClosed})
	})
	return nil
}

// InstallSignalShutdownHook registers an os/signal handler that calls Close
// exactly once when one of sig arrives. Calling Close directly remains safe
// at any time; this is purely a convenience for processes that want a clean
// shutdown on SIGINT/SIGTERM.
func (p *Pool) InstallSignalShutdownHook(sig ...os.Signal) {
	p.shutdownOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, sig...)
		go func() {
			<-ch
			p.Close()
		}()
	})
}

package beecp

import (
	"context"
	"database/sql/driver"
	"time"
)

// tester probes a PooledConnection for liveness. It must never panic out of
// IsAlive: a fault during the probe is treated as "not alive", not
// propagated to the Acquire caller.
type tester interface {
	IsAlive(ctx context.Context, p *PooledConnection) bool
}

// pingTester uses the driver's native driver.Pinger capability.
type pingTester struct {
	timeout time.Duration
}

func (t pingTester) IsAlive(ctx context.Context, p *PooledConnection) (alive bool) {
	pinger, ok := p.raw.(driver.Pinger)
	if !ok {
		return false
	}
	defer func() {
		if recover() != nil {
			alive = false
		}
	}()
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	if err := pinger.Ping(cctx); err != nil {
		return false
	}
	p.touch()
	return true
}

// queryTester falls back to executing a short probe statement when the
// driver connection doesn't implement driver.Pinger. It requires
// driver.QueryerContext or driver.ExecerContext; selectTester still returns
// one for a connection that implements neither, and its IsAlive then always
// reports false.
type queryTester struct {
	query      string
	timeout    time.Duration
	supportsCtx bool
}

func (t queryTester) IsAlive(ctx context.Context, p *PooledConnection) (alive bool) {
	defer func() {
		if recover() != nil {
			alive = false
		}
	}()

	cctx := ctx
	var cancel context.CancelFunc
	if t.supportsCtx {
		cctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if qc, ok := p.raw.(driver.QueryerContext); ok {
		rows, err := qc.QueryContext(cctx, t.query, nil)
		if err != nil {
			return false
		}
		defer rows.Close()
		p.touch()
		return true
	}
	if ec, ok := p.raw.(driver.ExecerContext); ok {
		if _, err := ec.ExecContext(cctx, t.query, nil); err != nil {
			return false
		}
		p.touch()
		return true
	}
	return false
}

// selectTester picks the liveness probe to use for connections produced by
// factory, based on what a sample connection implements. Called once, at
// the pool's first successful connection creation.
func selectTester(sample driver.Conn, testSQL string, timeout time.Duration) tester {
	if _, ok := sample.(driver.Pinger); ok {
		return pingTester{timeout: timeout}
	}
	_, hasQueryCtx := sample.(driver.QueryerContext)
	_, hasExecCtx := sample.(driver.ExecerContext)
	return queryTester{
		query:       testSQL,
		timeout:     timeout,
		supportsCtx: hasQueryCtx || hasExecCtx,
	}
}

// shouldSkipTest reports whether IsAlive may be skipped because p was
// touched more recently than interval ago.
func shouldSkipTest(p *PooledConnection, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	return p.idleFor() < interval
}

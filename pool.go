package beecp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PoolState is the lifecycle state of a Pool.
type PoolState int32

const (
	StateUninit PoolState = iota
	StateNormal
	StateClearing
	StateClosed
)

func (s PoolState) String() string {
	switch s {
	case StateUninit:
		return "uninitialized"
	case StateNormal:
		return "normal"
	case StateClearing:
		return "clearing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// testerBox lets Pool swap its chosen tester through an atomic.Value without
// requiring every tester implementation to share one concrete type across
// Store calls.
type testerBox struct {
	t tester
}

// servant run states.
type servantState int32

const (
	servantWorking servantState = iota
	servantWaitingState
	servantExit
)

// Pool is the entry point for the borrow/return transfer engine: a
// reusable cache of live driver connections handed out to concurrent
// callers, returned when done, health-checked, and evicted when idle or
// stuck.
type Pool struct {
	cfg Config

	state  atomic.Int32 // PoolState
	logger atomic.Value // *loggerBox

	conns   *connArray
	sem     admissionSemaphore
	policy  transferPolicy
	waiters *waitQueue
	hooks   *hookRegistry

	liveTester atomic.Value // *testerBox
	testerOnce sync.Once

	servantSt     atomic.Int32 // servantState
	servantSignal chan struct{}
	servantTries  atomic.Int32
	servantDone   chan struct{}

	idleStop chan struct{}
	idleDone chan struct{}

	createMu sync.Mutex

	closeOnce    sync.Once
	shutdownOnce sync.Once
}

// Open builds and initializes a Pool per cfg. It returns a *ConfigInvalidError
// if cfg fails validation.
func Open(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	p := &Pool{
		cfg:           cfg,
		conns:         newConnArray(),
		sem:           newAdmissionSemaphore(cfg.BorrowSemaphoreSize, cfg.FairMode),
		policy:        newTransferPolicy(cfg.FairMode),
		waiters:       newWaitQueue(),
		hooks:         newHookRegistry(),
		servantSignal: make(chan struct{}, 1),
		servantDone:   make(chan struct{}),
		idleStop:      make(chan struct{}),
		idleDone:      make(chan struct{}),
	}
	p.state.Store(int32(StateUninit))
	p.logger.Store(&loggerBox{})
	if cfg.Logger != nil {
		p.TraceOn("", cfg.Logger)
	}
	for point, list := range cfg.Hooks {
		for _, hook := range list {
			p.hooks.AddHook(point, hook)
		}
	}

	if err := p.init(); err != nil {
		return nil, err
	}
	if cfg.EnableManagement {
		registerDefaultManagement(p)
	}
	return p, nil
}

func (p *Pool) currentState() PoolState {
	return PoolState(p.state.Load())
}

// AddHook registers hook to run at point. Safe to call at any time; hooks
// registered after Open still observe every connection created or removed
// afterward, just not the InitialSize connections Open itself created (use
// Config.Hooks to also cover those).
func (p *Pool) AddHook(point HookPoint, hook Hook) {
	p.hooks.AddHook(point, hook)
}

// Acquire returns a Proxy wrapping a live connection, or an error. sess may
// be nil, in which case the fast path is skipped and every call goes
// through admission and scan-or-create/enlist.
func (p *Pool) Acquire(ctx context.Context, sess *Session) (*Proxy, error) {
	if p.currentState() != StateNormal {
		return nil, &PoolClosedError{State: p.currentState()}
	}

	if sess != nil {
		if conn := sess.borrower.lastUsedConn; conn != nil {
			if conn.casState(connIdle, connUsing) {
				if p.testOnBorrow(ctx, conn) {
					return newProxy(p, conn), nil
				}
				p.abandonOnReturn(conn)
			}
			sess.borrower.lastUsedConn = nil
		}
	}

	deadline := time.Now().Add(p.cfg.MaxWait)
	admitCtx, cancel := contextWithDeadline(ctx, deadline)
	defer cancel()

	if err := p.sem.acquire(admitCtx); err != nil {
		return nil, classifyWaitErr(ctx, err, p.cfg.MaxWait)
	}
	defer p.sem.release()

	if conn := p.scanOrCreate(ctx); conn != nil {
		p.rememberFastPath(sess, conn)
		return newProxy(p, conn), nil
	}

	return p.enlistAndWait(ctx, sess, deadline)
}

func (p *Pool) rememberFastPath(sess *Session, conn *PooledConnection) {
	if sess != nil {
		sess.borrower.lastUsedConn = conn
	}
}

// scanOrCreate walks the current snapshot for a free entry, and creates a
// new one if none is found and the pool has room.
func (p *Pool) scanOrCreate(ctx context.Context) *PooledConnection {
	conn, err := p.scanOrCreateErr(ctx)
	if err != nil {
		p.tracef("create failed during scan-or-create: %v", err)
		return nil
	}
	return conn
}

// scanOrCreateErr is scanOrCreate's error-preserving twin, used by the
// servant so a failed creation can be propagated to a waiter via
// transferException instead of silently logged.
func (p *Pool) scanOrCreateErr(ctx context.Context) (*PooledConnection, error) {
	// Always scans for Idle, never policy.checkState(): in fair mode a
	// connection mid-handoff sits at Using, and a brand-new arrival must
	// never race the waiter it was published to for it. checkState is the
	// handoff protocol's own bookkeeping (see tryCatch), not a scan filter.
	for _, conn := range p.conns.load() {
		if conn.State() != connIdle {
			continue
		}
		if !conn.casState(connIdle, connUsing) {
			continue
		}
		if p.testOnBorrow(ctx, conn) {
			return conn, nil
		}
		p.abandonOnReturn(conn)
	}

	if p.conns.len() >= p.cfg.PoolMaxSize {
		return nil, nil
	}
	return p.createPooledConn(ctx, connUsing)
}

// enlistAndWait offers the caller's Borrower on the wait queue and blocks
// until a connection, an error, or a timeout resolves it.
func (p *Pool) enlistAndWait(ctx context.Context, sess *Session, deadline time.Time) (*Proxy, error) {
	b := borrowerFor(sess)
	b.reset()
	b.drain()
	node := p.waiters.Offer(b)

	p.pokeServant()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		slot := b.load()
		switch slot.kind {
		case slotConnection:
			if !p.policy.tryCatch(slot.conn) {
				// lost the race to catch this hand-off (another path
				// reclaimed the connection first); go back to Normal and
				// keep waiting rather than leave the queue.
				b.cas(slot, normalSlot)
				continue
			}
			if !p.testOnBorrow(ctx, slot.conn) {
				p.abandonOnReturn(slot.conn)
				b.cas(slot, normalSlot)
				continue
			}
			p.waiters.Remove(node)
			p.rememberFastPath(sess, slot.conn)
			return newProxy(p, slot.conn), nil
		case slotError:
			p.waiters.Remove(node)
			return nil, slot.err
		case slotNormal:
			if !b.cas(normalSlot, waitingSlot) {
				// lost a race with a concurrent publish; loop and re-check.
				continue
			}
		case slotWaiting:
			// already parked from a previous iteration; fall through to select.
		}

		select {
		case <-b.signal:
			continue
		case <-timer.C:
			p.waiters.Remove(node)
			if landed, _ := b.publishError(&RequestTimeoutError{Waited: p.cfg.MaxWait.String()}); !landed {
				// a connection was concurrently published into this
				// Borrower; honor it rather than drop it on the floor.
				if final := b.load(); final.kind == slotConnection {
					p.rememberFastPath(sess, final.conn)
					return newProxy(p, final.conn), nil
				}
			}
			return nil, &RequestTimeoutError{Waited: p.cfg.MaxWait.String()}
		case <-ctx.Done():
			p.waiters.Remove(node)
			if landed, _ := b.publishError(&RequestInterruptError{Cause: ctx.Err()}); !landed {
				if final := b.load(); final.kind == slotConnection {
					p.rememberFastPath(sess, final.conn)
					return newProxy(p, final.conn), nil
				}
			}
			return nil, &RequestInterruptError{Cause: ctx.Err()}
		}
	}
}

func borrowerFor(sess *Session) *Borrower {
	if sess == nil {
		return newBorrower()
	}
	if sess.borrower.signal == nil {
		sess.borrower = *newBorrower()
	}
	return &sess.borrower
}

// Recycle returns conn to circulation: it tries to hand conn directly to a
// waiting Borrower, and only publishes it to Idle/creates servant demand if
// no waiter catches it.
func (p *Pool) Recycle(conn *PooledConnection) error {
	if err := p.restoreDefaults(conn); err != nil {
		p.removePooledConn(conn, "recycle restore failed")
		return err
	}

	free := p.policy.beforeTransfer(conn)
	caught := false
	p.waiters.Walk(func(b *Borrower) bool {
		if conn.State() != free {
			// another path (abandon, idle-scan, a faster waiter) already
			// reclaimed conn out from under this hand-off; stop walking.
			return false
		}
		landed, wasWaiting := b.publishConnection(conn)
		if !landed {
			return true
		}
		if wasWaiting {
			b.unpark()
		}
		caught = true
		return false
	})

	if !caught {
		p.policy.onFailedTransfer(conn)
		p.pokeServant()
	}
	return nil
}

// abandonOnReturn is used when a connection came back broken (a forwarded
// driver call failed, or testOnBorrow failed): it is removed from the pool
// outright rather than recycled.
func (p *Pool) abandonOnReturn(conn *PooledConnection) {
	p.removePooledConn(conn, "abandoned")
	p.pokeServant()
}

// transferException publishes err to one waiting Borrower, used when the
// servant's background creation attempt fails and a waiter needs to be woken
// with the failure rather than left to time out.
func (p *Pool) transferException(err error) {
	p.waiters.Walk(func(b *Borrower) bool {
		landed, wasWaiting := b.publishError(err)
		if !landed {
			return true
		}
		if wasWaiting {
			b.unpark()
		}
		return false
	})
}

// broadcastException publishes err to every currently enlisted Borrower,
// not just the first eligible one. Close and Clear use this instead of
// transferException: every parked acquirer must observe a terminal error
// immediately rather than have all but the first time out on its own
// deadline once the pool has already left Normal.
func (p *Pool) broadcastException(err error) {
	p.waiters.Walk(func(b *Borrower) bool {
		if landed, wasWaiting := b.publishError(err); landed && wasWaiting {
			b.unpark()
		}
		return true
	})
}

// testOnBorrow runs the liveness check unless conn was touched recently
// enough to skip it, per Config.ConnectionTestInterval.
func (p *Pool) testOnBorrow(ctx context.Context, conn *PooledConnection) bool {
	if shouldSkipTest(conn, p.cfg.ConnectionTestInterval) {
		return true
	}
	box, _ := p.liveTester.Load().(*testerBox)
	if box == nil {
		return true
	}
	alive := box.t.IsAlive(ctx, conn)
	if !alive {
		p.tracef("test-on-borrow failed for connection, removing")
	}
	return alive
}

func (p *Pool) restoreDefaults(conn *PooledConnection) error {
	conn.touch()
	return nil
}

func classifyWaitErr(ctx context.Context, err error, maxWait time.Duration) error {
	if ctx.Err() != nil {
		return &RequestInterruptError{Cause: ctx.Err()}
	}
	return &RequestTimeoutError{Waited: maxWait.String()}
}

func contextWithDeadline(ctx context.Context, deadline time.Time) (context.Context, context.CancelFunc) {
	return context.WithDeadline(ctx, deadline)
}

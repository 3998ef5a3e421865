/*
Package beecp implements a high-throughput database connection pool: a
reusable cache of live driver connections handed out to concurrent callers,
returned when done, health-checked, and evicted when idle or stuck.

# Core pieces

The hard part, and the bulk of this package, is the borrow/return transfer
engine: a coordination mechanism that lets many goroutines compete (or queue
fairly) for a small set of pooled connections, with strict ordering, timeout,
cancellation, and failure semantics.

  - Pool is the entry point: Open, Acquire, Recycle, Clear, Close.
  - PooledConnection owns one raw driver.Conn plus its state and last-access
    time.
  - Two background goroutines keep the pool healthy: the servant grows the
    pool on demand, the idle-scan worker evicts stale entries.

# Basic usage

	factory, _ := beecp.MySQLFactory(mysqlCfg)
	pool, err := beecp.Open(beecp.Config{
		Factory:     factory,
		InitialSize: 2,
		PoolMaxSize: 20,
		MaxWait:     3 * time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	proxy, err := pool.Acquire(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer proxy.Close()

# Sessions replace thread-locals

Go has no per-OS-thread storage tied to a goroutine's lifetime, and goroutines
are not 1:1 with OS threads, so the fast "reuse my last connection" path this
pool offers (analogous to a thread-local borrower cache) is opt-in: callers
that want it hold a *Session across calls (typically one per long-lived worker
goroutine) and pass it to Acquire. A nil Session simply skips the fast path.

# Driver connections, not database/sql

Pool hands out raw driver.Conn values wrapped in a minimal Proxy, not
*sql.DB/*sql.Conn. This mirrors the spec's boundary: the driver-level protocol
and any richer statement/result-set proxying belong to an external
collaborator. Callers that want full database/sql ergonomics on top of this
pool are expected to layer sql.OpenDB with a custom driver.Connector that
delegates Connect to Pool.Acquire and Close to Proxy.Close.

# Transfer policies

Two hand-off disciplines are available, selected by Config.FairMode:

  - Compete (default): a returning connection goes straight to Idle and any
    goroutine, waiter or new arrival, may race to catch it. Maximizes
    throughput.
  - Fair: admission and hand-off are FIFO; a returning connection is not freed
    to Idle until the longest-waiting goroutine has had a chance to catch it.
    Maximizes starvation resistance at some throughput cost.

Source code and project home: https://github.com/HawksSam/beecp
*/
package beecp

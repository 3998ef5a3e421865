package beecp

import "time"

// existBorrower reports whether any goroutine currently holds (or is
// waiting for) an admission permit, used by the idle-scan worker to decide
// whether an eviction pass is worth logging as a snapshot.
func (p *Pool) existBorrower() bool {
	return p.cfg.BorrowSemaphoreSize-availablePermitsHint(p.sem) > 0
}

// availablePermitsHint reports how many admission permits are currently
// free: the buffered permits for the compete semaphore, the unclaimed count
// for the fair one. The value may be stale by the time the caller uses it.
func availablePermitsHint(sem admissionSemaphore) int {
	switch s := sem.(type) {
	case *competeSemaphore:
		return len(s.permits)
	case *fairSemaphore:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.available
	}
	return 0
}

// runIdleScan is the single long-lived goroutine behind the idle-scan
// worker. It prunes idle-timeout, hold-timeout, and closed entries from the
// connection array on a fixed tick.
func (p *Pool) runIdleScan() {
	defer close(p.idleDone)
	ticker := time.NewTicker(p.cfg.IdleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.idleStop:
			return
		case <-ticker.C:
			p.scanIdle()
		}
	}
}

func (p *Pool) scanIdle() {
	if p.currentState() != StateNormal {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.tracef("idle scan: recovered panic: %v", r)
		}
	}()

	var evicted, held int
	for _, conn := range p.conns.load() {
		switch conn.State() {
		case connClosed:
			p.conns.remove(conn)
			evicted++
		case connIdle:
			if p.cfg.IdleTimeout > 0 && conn.idleFor() > p.cfg.IdleTimeout {
				if conn.casState(connIdle, connClosed) {
					p.removePooledConn(conn, "idle timeout")
					evicted++
				}
			}
		case connUsing:
			if p.cfg.HoldTimeout > 0 && conn.idleFor() > p.cfg.HoldTimeout {
				if px := conn.proxy.Load(); px != nil {
					// A bound Proxy is still live: close it rather than
					// reaching past it, so its own Close path (Recycle or
					// abandonOnReturn) runs exactly once and the caller's
					// eventual px.Close() is just a no-op second call.
					if err := px.Close(); err != nil {
						p.tracef("hold timeout: error closing bound proxy: %v", err)
					}
					evicted++
					held++
				} else if conn.casState(connUsing, connClosed) {
					p.removePooledConn(conn, "hold timeout")
					evicted++
					held++
				}
			}
		}
	}

	if evicted > 0 {
		p.pokeServant()
	}
	if p.existBorrower() {
		p.tracef("idle scan: evicted=%d held-timeout=%d pool size=%d", evicted, held, p.conns.len())
	}
}

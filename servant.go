package beecp

import "context"

// pokeServant registers demand for one more connection attempt and wakes
// the servant goroutine if it was parked waiting for work. Called from the
// recycle-miss path, abandon-on-return, test-on-borrow failure, and from
// Acquire just before a caller parks on the wait queue.
func (p *Pool) pokeServant() {
	for {
		cur := p.servantTries.Load()
		if int(cur) >= p.cfg.PoolMaxSize {
			break
		}
		if p.servantTries.CompareAndSwap(cur, cur+1) {
			break
		}
	}
	if p.servantSt.CompareAndSwap(int32(servantWaitingState), int32(servantWorking)) {
		select {
		case p.servantSignal <- struct{}{}:
		default:
		}
	}
}

// runServant is the single long-lived goroutine behind the servant worker.
// It wakes on demand, tries to produce a connection and hand it off, and
// parks again once demand is exhausted.
func (p *Pool) runServant() {
	defer close(p.servantDone)
	for {
		if servantState(p.servantSt.Load()) == servantExit {
			return
		}

		tries := p.servantTries.Load()
		if tries <= 0 {
			if p.servantSt.CompareAndSwap(int32(servantWorking), int32(servantWaitingState)) {
				select {
				case <-p.servantSignal:
				case <-p.idleStop:
				}
			}
			continue
		}
		p.servantTries.Add(-1)

		func() {
			defer func() {
				if r := recover(); r != nil {
					p.tracef("servant: recovered panic: %v", r)
				}
			}()
			conn, err := p.scanOrCreateErr(context.Background())
			if err != nil {
				p.transferException(err)
				return
			}
			if conn != nil {
				p.Recycle(conn)
			}
		}()
	}
}

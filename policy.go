package beecp

// transferPolicy selects the contract by which a returning connection is
// handed to a waiting Borrower. The two implementations below differ only
// in which connState they leave the connection in during the handoff
// window and what TryCatch requires to accept it.
type transferPolicy interface {
	// beforeTransfer prepares p for handoff, returning the state a waiter
	// must observe to accept it.
	beforeTransfer(p *PooledConnection) connState
	// tryCatch attempts to claim p on behalf of a waiter that was just
	// handed it. It returns false if the handoff lost a race.
	tryCatch(p *PooledConnection) bool
	// onFailedTransfer runs when no waiter accepted p, restoring p to a
	// state new arrivals can find it in.
	onFailedTransfer(p *PooledConnection)
	// checkState is the connState p sits in while a handoff of it is in
	// progress. Scan-or-create does not use it; it always looks for Idle.
	checkState() connState
}

// competePolicy implements the default, highest-throughput discipline: on
// return a connection goes straight to Idle and any goroutine, waiter or
// brand new arrival, may race to CAS it to Using.
type competePolicy struct{}

func (competePolicy) beforeTransfer(p *PooledConnection) connState {
	p.setState(connIdle)
	return connIdle
}

func (competePolicy) tryCatch(p *PooledConnection) bool {
	return p.casState(connIdle, connUsing)
}

func (competePolicy) onFailedTransfer(p *PooledConnection) {
	// already Idle from beforeTransfer; nothing to undo.
}

func (competePolicy) checkState() connState { return connIdle }

// fairPolicy implements FIFO hand-off: the connection is left at Using
// during the handoff window so only the Borrower it was published to (not a
// new arrival racing scan-or-create) may accept it.
type fairPolicy struct{}

func (fairPolicy) beforeTransfer(p *PooledConnection) connState {
	// state is already Using from the returning caller; leave it.
	return connUsing
}

func (fairPolicy) tryCatch(p *PooledConnection) bool {
	return p.State() == connUsing
}

func (fairPolicy) onFailedTransfer(p *PooledConnection) {
	p.setState(connIdle)
}

func (fairPolicy) checkState() connState { return connUsing }

func newTransferPolicy(fair bool) transferPolicy {
	if fair {
		return fairPolicy{}
	}
	return competePolicy{}
}

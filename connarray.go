package beecp

import (
	"sync"
	"sync/atomic"
)

// connArray is a copy-on-write snapshot of every PooledConnection the pool
// currently owns. Readers (scan-or-create, idle-scan) load the snapshot
// pointer once and iterate it without locking; writers (grow, remove)
// serialize through mu and publish a fresh slice.
type connArray struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]*PooledConnection]
}

func newConnArray() *connArray {
	a := &connArray{}
	empty := make([]*PooledConnection, 0)
	a.snapshot.Store(&empty)
	return a
}

// load returns the current snapshot slice. Callers must not mutate it.
func (a *connArray) load() []*PooledConnection {
	return *a.snapshot.Load()
}

func (a *connArray) len() int {
	return len(a.load())
}

// add appends p to the array and publishes a new snapshot.
func (a *connArray) add(p *PooledConnection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	old := a.load()
	next := make([]*PooledConnection, len(old), len(old)+1)
	copy(next, old)
	next = append(next, p)
	a.snapshot.Store(&next)
}

// remove drops p from the array (by identity) and publishes a new snapshot.
// It is a no-op if p is not present.
func (a *connArray) remove(p *PooledConnection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	old := a.load()
	idx := -1
	for i, c := range old {
		if c == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	next := make([]*PooledConnection, 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	a.snapshot.Store(&next)
}

package beecp

import "sync"

// waitNode is one link in the wait queue's doubly linked list.
type waitNode struct {
	b          *Borrower
	prev, next *waitNode
	removed    bool
}

// waitQueue is an MPMC FIFO of waiting Borrowers. Offer is O(1); Remove is
// O(1) given the node returned by Offer. Walk visits nodes front-to-back and
// is safe to call concurrently with Offer/Remove, though it may observe an
// entry being concurrently removed.
type waitQueue struct {
	mu         sync.Mutex
	head, tail *waitNode
	size       int
}

func newWaitQueue() *waitQueue {
	return &waitQueue{}
}

// Offer enlists b at the back of the queue and returns the node handle
// needed to remove it later.
func (q *waitQueue) Offer(b *Borrower) *waitNode {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := &waitNode{b: b}
	if q.tail == nil {
		q.head, q.tail = n, n
	} else {
		n.prev = q.tail
		q.tail.next = n
		q.tail = n
	}
	q.size++
	return n
}

// Remove detaches n from the queue. It is a no-op if n was already removed.
func (q *waitQueue) Remove(n *waitNode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(n)
}

func (q *waitQueue) removeLocked(n *waitNode) {
	if n.removed {
		return
	}
	n.removed = true
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}
	// n keeps its own prev/next so a Walk currently standing on n can still
	// step forward to the entries that follow it.
	q.size--
}

// Len reports the current queue length.
func (q *waitQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Walk calls fn for each Borrower from front to back, stopping early if fn
// returns false. fn may be called with a Borrower that is concurrently
// leaving the queue; callers are expected to use CAS against Borrower state
// to detect and skip stale entries, which is why Walk makes no stronger
// consistency promise than "every still-present entry is visited in order".
func (q *waitQueue) Walk(fn func(b *Borrower) bool) {
	q.mu.Lock()
	n := q.head
	q.mu.Unlock()
	for n != nil {
		if !fn(n.b) {
			return
		}
		q.mu.Lock()
		next := n.next
		q.mu.Unlock()
		n = next
	}
}

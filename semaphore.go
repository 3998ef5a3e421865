package beecp

import (
	"context"
	"sync"
)

// admissionSemaphore bounds the number of goroutines concurrently inside the
// scan-or-create/wait-loop portion of Acquire. newAdmissionSemaphore picks an
// unfair (buffered channel) or fair (ticket queue) implementation to match
// the pool's transfer policy, since admission ordering and hand-off ordering
// must agree: a fair hand-off behind unfair admission would still let a
// late arrival cut the queue.
type admissionSemaphore interface {
	// acquire blocks until a permit is available, ctx is done, or the permit
	// could not be obtained before the deadline baked into ctx.
	acquire(ctx context.Context) error
	// release returns a permit.
	release()
	// waiters reports how many goroutines are currently blocked in acquire.
	waiters() int
}

// competeSemaphore is the unfair implementation: a buffered channel used as
// a counting semaphore. Whichever goroutine wins the race to receive gets
// the permit; there is no ordering guarantee among blocked callers.
type competeSemaphore struct {
	permits chan struct{}

	mu      sync.Mutex
	waiting int
}

func newCompeteSemaphore(size int) *competeSemaphore {
	s := &competeSemaphore{permits: make(chan struct{}, size)}
	for i := 0; i < size; i++ {
		s.permits <- struct{}{}
	}
	return s
}

func (s *competeSemaphore) acquire(ctx context.Context) error {
	s.mu.Lock()
	s.waiting++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.waiting--
		s.mu.Unlock()
	}()

	select {
	case <-s.permits:
		return nil
	default:
	}

	select {
	case <-s.permits:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *competeSemaphore) release() {
	select {
	case s.permits <- struct{}{}:
	default:
		// a release without a matching acquire finds the channel full;
		// the surplus permit is dropped silently.
	}
}

func (s *competeSemaphore) waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// fairSemaphore is the FIFO implementation: callers take a ticket and are
// granted a permit strictly in ticket order.
type fairSemaphore struct {
	mu        sync.Mutex
	available int
	tickets   []chan struct{}
}

func newFairSemaphore(size int) *fairSemaphore {
	return &fairSemaphore{available: size}
}

func (s *fairSemaphore) acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.available > 0 && len(s.tickets) == 0 {
		s.available--
		s.mu.Unlock()
		return nil
	}
	ticket := make(chan struct{}, 1)
	s.tickets = append(s.tickets, ticket)
	s.mu.Unlock()

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, t := range s.tickets {
			if t == ticket {
				s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// already granted a permit concurrently with cancellation; honor the
		// grant rather than leak it, matching Acquire's general "don't
		// discard a connection we were just handed" rule.
		select {
		case <-ticket:
		default:
		}
		return nil
	}
}

func (s *fairSemaphore) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tickets) > 0 {
		next := s.tickets[0]
		s.tickets = s.tickets[1:]
		next <- struct{}{}
		return
	}
	s.available++
}

func (s *fairSemaphore) waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func newAdmissionSemaphore(size int, fair bool) admissionSemaphore {
	if fair {
		return newFairSemaphore(size)
	}
	return newCompeteSemaphore(size)
}

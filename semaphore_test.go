package beecp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SemaphoreTestSuite struct {
	suite.Suite
}

func TestSemaphoreTestSuite(t *testing.T) {
	suite.Run(t, new(SemaphoreTestSuite))
}

func (s *SemaphoreTestSuite) TestCompeteAcquireRelease() {
	sem := newCompeteSemaphore(1)
	ctx := context.Background()
	s.Require().NoError(sem.acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		sem.acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		s.Fail("second acquire should have blocked while the only permit is held")
	case <-time.After(30 * time.Millisecond):
	}

	sem.release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		s.Fail("acquire should have unblocked after release")
	}
}

func (s *SemaphoreTestSuite) TestCompeteAcquireTimesOut() {
	sem := newCompeteSemaphore(1)
	ctx := context.Background()
	s.Require().NoError(sem.acquire(ctx))

	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := sem.acquire(cctx)
	s.Error(err)
}

func (s *SemaphoreTestSuite) TestFairAcquireGrantsInTicketOrder() {
	sem := newFairSemaphore(1)
	ctx := context.Background()
	s.Require().NoError(sem.acquire(ctx))

	order := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		go func() {
			if sem.acquire(ctx) == nil {
				order <- i
			}
		}()
		time.Sleep(10 * time.Millisecond) // preserve arrival order for this assertion
	}

	sem.release()
	first := <-order
	s.Equal(1, first)

	sem.release()
	second := <-order
	s.Equal(2, second)

	sem.release()
	third := <-order
	s.Equal(3, third)
}

func (s *SemaphoreTestSuite) TestFairAcquireTimesOutAndDropsTicket() {
	sem := newFairSemaphore(1)
	ctx := context.Background()
	s.Require().NoError(sem.acquire(ctx))

	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := sem.acquire(cctx)
	s.Error(err)
	s.Equal(0, sem.waiters())
}

func (s *SemaphoreTestSuite) TestWaitersReportsBlockedCount() {
	sem := newCompeteSemaphore(1)
	ctx := context.Background()
	s.Require().NoError(sem.acquire(ctx))

	done := make(chan struct{})
	go func() {
		sem.acquire(ctx)
		<-done
	}()
	time.Sleep(20 * time.Millisecond)
	s.Equal(1, sem.waiters())

	sem.release()
	close(done)
}

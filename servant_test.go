package beecp_test

import (
	"context"
	"testing"
	"time"

	"github.com/HawksSam/beecp"
	"github.com/stretchr/testify/suite"
)

type ServantTestSuite struct {
	suite.Suite
}

func TestServantTestSuite(t *testing.T) {
	suite.Run(t, new(ServantTestSuite))
}

// A recycle miss (no waiter eligible) pokes the servant, but since the pool
// is already at capacity with the returned entry Idle, the servant has
// nothing useful to do and the entry simply stays available for the next
// scan. This exercises that poking the servant never panics or wedges when
// there is no real demand to satisfy.
func (s *ServantTestSuite) TestRecycleMissPokesServantHarmlessly() {
	pool, _ := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 1
	})
	ctx := context.Background()
	px, err := pool.Acquire(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(px.Close())

	s.Eventually(func() bool {
		return pool.Stats().Idle == 1
	}, time.Second, 5*time.Millisecond)
}

// The servant produces a connection for a waiter it never directly
// interacted with: two parked waiters should both eventually resolve once
// the pool has room for two entries.
func (s *ServantTestSuite) TestServantSatisfiesMultipleWaiters() {
	pool, _ := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 2
		cfg.InitialSize = 0
		cfg.MaxWait = time.Second
	})
	ctx := context.Background()

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			px, err := pool.Acquire(ctx, nil)
			if err == nil {
				defer px.Close()
			}
			results <- err
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			s.NoError(err)
		case <-time.After(time.Second):
			s.FailNow("waiter never resolved")
		}
	}
}

// Exit: Close stops the servant goroutine; a subsequent poke (via another
// Close on an already-abandoned connection reference) must not panic even
// though the pool is shut down.
func (s *ServantTestSuite) TestCloseStopsServantCleanly() {
	pool, _ := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 1
	})
	s.Require().NoError(pool.Close())
}

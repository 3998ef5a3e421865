package beecp_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HawksSam/beecp"
	"github.com/stretchr/testify/suite"
)

type IdleScanTestSuite struct {
	suite.Suite
}

func TestIdleScanTestSuite(t *testing.T) {
	suite.Run(t, new(IdleScanTestSuite))
}

// Hold-timeout reclaim closes the bound Proxy rather than tearing the raw
// connection down directly: the connection is healthy, only its caller is
// stuck, so the release path is an ordinary Recycle back to Idle.
func (s *IdleScanTestSuite) TestHoldTimeoutReclaimsStuckConnection() {
	var removeCount atomic.Int32
	pool, connector := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 0
		cfg.HoldTimeout = 40 * time.Millisecond
		cfg.IdleCheckInterval = 10 * time.Millisecond
		cfg.MaxWait = time.Second
		cfg.Hooks = map[beecp.HookPoint][]beecp.Hook{
			beecp.AfterRemove: {beecp.HookFunc(func(context.Context, *beecp.PooledConnection) error {
				removeCount.Add(1)
				return nil
			})},
		}
	})

	ctx := context.Background()
	px, err := pool.Acquire(ctx, nil)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return pool.Stats().Idle == 1 && pool.Stats().Using == 0
	}, time.Second, 10*time.Millisecond)

	s.Equal(1, len(connector.all()))
	s.False(connector.all()[0].isClosed(), "hold-timeout reclaim recycles a healthy connection, it does not close it")
	s.Zero(removeCount.Load())

	// The original caller eventually closes its (already reclaimed) Proxy.
	// That must be a harmless no-op, not a second removal of the same
	// PooledConnection.
	s.Require().NoError(px.Close())
	s.Zero(removeCount.Load())
}

func (s *IdleScanTestSuite) TestZeroIdleTimeoutDisablesEviction() {
	pool, connector := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 1
		cfg.IdleTimeout = 0
		cfg.IdleCheckInterval = 10 * time.Millisecond
	})

	time.Sleep(60 * time.Millisecond)
	s.Equal(1, pool.Stats().Total)
	s.False(connector.all()[0].isClosed())
}

// Clear(force=false) waits for an in-use connection to be returned naturally
// before reclaiming it, per the "does not close connections whose bound
// proxy is still open" testable property.
func (s *IdleScanTestSuite) TestClearWithoutForceWaitsForInUseConnection() {
	pool, connector := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 1
		cfg.IdleTimeout = 5 * time.Millisecond
		cfg.IdleCheckInterval = 5 * time.Millisecond
		cfg.DelayForNextClear = 200 * time.Millisecond
	})

	ctx := context.Background()
	px, err := pool.Acquire(ctx, nil)
	s.Require().NoError(err)

	go pool.Clear(ctx, false) // blocks polling since px is still Using
	time.Sleep(15 * time.Millisecond)
	s.False(connector.all()[0].isClosed(), "Clear(false) must not close a connection that is still in use")
	s.Require().NoError(px.Close())

	s.Eventually(func() bool {
		return pool.Stats().State == beecp.StateNormal.String()
	}, time.Second, 10*time.Millisecond)
	s.NotEmpty(connector.all())
}

package beecp

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConnArrayTestSuite struct {
	suite.Suite
}

func TestConnArrayTestSuite(t *testing.T) {
	suite.Run(t, new(ConnArrayTestSuite))
}

func (s *ConnArrayTestSuite) TestAddAndLen() {
	a := newConnArray()
	s.Equal(0, a.len())

	a.add(&PooledConnection{})
	a.add(&PooledConnection{})
	s.Equal(2, a.len())
}

func (s *ConnArrayTestSuite) TestLoadReturnsSnapshotNotLiveView() {
	a := newConnArray()
	snap := a.load()
	a.add(&PooledConnection{})
	s.Len(snap, 0, "earlier snapshot must not observe a later add")
	s.Len(a.load(), 1)
}

func (s *ConnArrayTestSuite) TestRemoveByIdentity() {
	a := newConnArray()
	p1 := &PooledConnection{}
	p2 := &PooledConnection{}
	a.add(p1)
	a.add(p2)

	a.remove(p1)
	s.Equal([]*PooledConnection{p2}, a.load())
}

func (s *ConnArrayTestSuite) TestRemoveMissingIsNoop() {
	a := newConnArray()
	p1 := &PooledConnection{}
	a.add(p1)

	a.remove(&PooledConnection{})
	s.Equal(1, a.len())
}

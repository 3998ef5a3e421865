package beecp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HawksSam/beecp"
	"github.com/stretchr/testify/suite"
)

type ManagementTestSuite struct {
	suite.Suite
}

func TestManagementTestSuite(t *testing.T) {
	suite.Run(t, new(ManagementTestSuite))
}

func (s *ManagementTestSuite) TestStatsReflectsIdleAndUsing() {
	pool, _ := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 2
		cfg.InitialSize = 0
	})
	ctx := context.Background()
	px, err := pool.Acquire(ctx, nil)
	s.Require().NoError(err)
	defer px.Close()

	stats := pool.Stats()
	s.Equal(1, stats.Total)
	s.Equal(1, stats.Using)
	s.Equal(0, stats.Idle)
	s.Equal(beecp.StateNormal.String(), stats.State)
}

func (s *ManagementTestSuite) TestRegisterManagementServesStatsAndClear() {
	pool, _ := newTestPool(s.T(), func(cfg *beecp.Config) {
		cfg.PoolMaxSize = 1
		cfg.InitialSize = 1
		cfg.Name = "primary"
	})

	mux := http.NewServeMux()
	pool.RegisterManagement(mux, "primary")
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/pool/primary")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats beecp.PoolStats
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&stats))
	s.Equal("primary", stats.Name)
	s.Equal(1, stats.Total)

	resp2, err := http.Post(srv.URL+"/debug/pool/primary/clear", "", nil)
	s.Require().NoError(err)
	defer resp2.Body.Close()
	s.Equal(http.StatusNoContent, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/debug/pool/primary/clear")
	s.Require().NoError(err)
	defer resp3.Body.Close()
	s.Equal(http.StatusMethodNotAllowed, resp3.StatusCode)
}

func (s *ManagementTestSuite) TestEnableManagementRegistersOnDefaultMux() {
	cfg := beecp.Config{
		Factory:          beecp.GenericConnectorFactory(&fakeConnector{}),
		PoolMaxSize:      1,
		InitialSize:      1,
		Name:             "enable-management-test-pool",
		EnableManagement: true,
	}
	pool, err := beecp.Open(cfg)
	s.Require().NoError(err)
	defer pool.Close()

	srv := httptest.NewServer(http.DefaultServeMux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/pool/enable-management-test-pool")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

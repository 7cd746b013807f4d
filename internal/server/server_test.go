package server_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/splitgraph/seafowl/internal/catalog"
	"github.com/splitgraph/seafowl/internal/healthcheck"
	"github.com/splitgraph/seafowl/internal/httpgateway"
	"github.com/splitgraph/seafowl/internal/ingest"
	"github.com/splitgraph/seafowl/internal/server"
)

func TestServer_RunAndClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqliteCtx, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	defer sqliteCtx.Close()

	gw := httpgateway.New(sqliteCtx, ingest.New(sqliteCtx), zap.NewNop())
	health := healthcheck.NewServer()

	srv := server.New(server.Config{BindHost: "127.0.0.1", BindPort: 0}, gw, health, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readyCancel()
	require.True(t, srv.Ready(readyCtx))

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestServer_HealthzMounted(t *testing.T) {
	sqliteCtx, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	defer sqliteCtx.Close()

	gw := httpgateway.New(sqliteCtx, ingest.New(sqliteCtx), zap.NewNop())
	health := healthcheck.NewServer()

	srv := server.New(server.Config{BindHost: "127.0.0.1", BindPort: 0}, gw, health, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readyCancel()
	require.True(t, srv.Ready(readyCtx))

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	<-errCh
}

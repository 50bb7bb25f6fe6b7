package server_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/macrobot-go/internal/metrics"
	"github.com/raphaelgruber/macrobot-go/internal/server"
	"github.com/raphaelgruber/macrobot-go/internal/store"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
	"github.com/raphaelgruber/macrobot-go/internal/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerCreation(t *testing.T) {
	srv := server.New("test-version", testLogger(), nil)
	require.NotNil(t, srv)
	require.NotNil(t, srv.MCPServer())

	// Setup should not panic with or without a collector.
	srv.Setup()
}

func TestServer_MetricsMiddlewareCountsToolCalls(t *testing.T) {
	logger := testLogger()
	collector := metrics.NewCollector()

	srv := server.New("0.1.0-test", logger, collector)
	srv.Setup()

	engine := synthesis.NewEngine(synthesis.NewRuleStrategy(1), logger)
	st := store.New(engine, store.WithLogger(logger))
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Store:   st,
		Metrics: collector,
		Logger:  logger,
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "ping"})
	require.NoError(t, err)
	_, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "add_profile",
		Arguments: map[string]any{"name": "Editor"},
	})
	require.NoError(t, err)

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.Tools["ping"].Count)
	assert.Equal(t, int64(1), snap.Tools["add_profile"].Count)
}

package mcp_test

import (
	"context"
	"testing"

	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	servicemcp "github.com/glasswing-io/glasswing/pkg/service/mcp"
	"github.com/m-mizutani/gt"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type serverDeps struct {
	outputs interfaces.OutputStore
	index   interfaces.MemoryIndex
}

func setupSession(t *testing.T) (*mcp.ClientSession, serverDeps) {
	t.Helper()
	ctx := context.Background()

	deps := serverDeps{
		outputs: memory.NewOutputStore(),
		index:   memory.NewMemoryIndex(64),
	}
	server := servicemcp.NewServer(deps.outputs, deps.index, adapter.NewLocalEmbedder(64))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	go func() {
		_ = server.Serve(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session, deps
}

func TestServerListTools(t *testing.T) {
	session, _ := setupSession(t)
	ctx := context.Background()

	listed, err := session.ListTools(ctx, nil)
	gt.NoError(t, err)
	gt.A(t, listed.Tools).Length(3)
}

func TestServerStoreAndSearch(t *testing.T) {
	session, deps := setupSession(t)
	ctx := context.Background()

	stored, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "store_memory",
		Arguments: map[string]any{"text": "the bakery closes at six"},
	})
	gt.NoError(t, err)
	gt.False(t, stored.IsError)

	count, err := deps.index.Count(ctx)
	gt.NoError(t, err)
	gt.Equal(t, count, 1)

	found, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_memory",
		Arguments: map[string]any{"query": "bakery closes at six", "limit": 3},
	})
	gt.NoError(t, err)
	gt.False(t, found.IsError)

	text, ok := found.Content[0].(*mcp.TextContent)
	gt.True(t, ok)
	gt.S(t, text.Text).Contains("the bakery closes at six")
}

func TestServerRecentOutputs(t *testing.T) {
	session, deps := setupSession(t)
	ctx := context.Background()

	out := model.NewAgentOutput(model.OutputKindASR, "hello from the street", 0.8)
	gt.NoError(t, deps.outputs.Append(ctx, out))

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "recent_outputs",
		Arguments: map[string]any{"limit": 5},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	text, ok := result.Content[0].(*mcp.TextContent)
	gt.True(t, ok)
	gt.S(t, text.Text).Contains("hello from the street")
}

func TestServerSearchRequiresQuery(t *testing.T) {
	session, _ := setupSession(t)
	ctx := context.Background()

	// A call without the query property is rejected by schema validation
	// before it reaches the handler.
	_, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_memory",
		Arguments: map[string]any{},
	})
	gt.Error(t, err)

	// An empty query passes the schema and is rejected by the handler.
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_memory",
		Arguments: map[string]any{"query": ""},
	})
	gt.NoError(t, err)
	gt.True(t, result.IsError)
}

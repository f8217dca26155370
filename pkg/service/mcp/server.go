// Package mcp connects the on-device stores to the Model Context
// Protocol: a stdio server that lets desktop assistants search and store
// memories, and a bridge that pulls tools from external MCP servers into
// the agent's tool registry.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes memory search and storage over MCP stdio.
type Server struct {
	outputs  interfaces.OutputStore
	index    interfaces.MemoryIndex
	embedder adapter.Embedder
}

func NewServer(outputs interfaces.OutputStore, index interfaces.MemoryIndex, embedder adapter.Embedder) *Server {
	return &Server{
		outputs:  outputs,
		index:    index,
		embedder: embedder,
	}
}

type searchMemoryParams struct {
	Query string `json:"query" jsonschema:"Natural language query to match against stored memories"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of hits to return (default 5)"`
}

type storeMemoryParams struct {
	Text string `json:"text" jsonschema:"Memory text to embed and store"`
}

type recentOutputsParams struct {
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of outputs to return (default 10)"`
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by output kind: asr, ocr, llm or tool_call"`
}

func (s *Server) searchMemory(ctx context.Context, req *mcp.CallToolRequest, params *searchMemoryParams) (*mcp.CallToolResult, any, error) {
	if params.Query == "" {
		return nil, nil, goerr.New("query is required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}

	vector, err := s.embedder.Embed(ctx, params.Query)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to embed query")
	}

	hits, err := s.index.Search(ctx, vector, limit, memory.DefaultSearchThreshold)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to search memories")
	}

	if len(hits) == 0 {
		return textResult("No memories matched the query."), nil, nil
	}

	var sb strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&sb, "%d. [score %.3f] %s\n", i+1, hit.Score, hit.Record.Text)
	}
	return textResult(sb.String()), nil, nil
}

func (s *Server) storeMemory(ctx context.Context, req *mcp.CallToolRequest, params *storeMemoryParams) (*mcp.CallToolResult, any, error) {
	if params.Text == "" {
		return nil, nil, goerr.New("text is required")
	}

	vector, err := s.embedder.Embed(ctx, params.Text)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to embed text")
	}

	id, err := s.index.Insert(ctx, params.Text, vector, map[string]string{"source": "mcp"})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to insert memory")
	}

	return textResult(fmt.Sprintf("Stored memory %d.", id)), nil, nil
}

func (s *Server) recentOutputs(ctx context.Context, req *mcp.CallToolRequest, params *recentOutputsParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	var (
		outputs []*model.AgentOutput
		err     error
	)
	if params.Kind != "" {
		outputs, err = s.outputs.ByKind(ctx, model.OutputKind(params.Kind))
		if err == nil && len(outputs) > limit {
			outputs = outputs[len(outputs)-limit:]
		}
	} else {
		outputs, err = s.outputs.Recent(ctx, limit)
	}
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read outputs")
	}

	if len(outputs) == 0 {
		return textResult("No outputs recorded."), nil, nil
	}

	var sb strings.Builder
	for _, out := range outputs {
		fmt.Fprintf(&sb, "[%s] %s (%.2f) %s\n",
			out.ProducedAt.Format("15:04:05"), out.Kind, out.Confidence, out.Text)
	}
	return textResult(sb.String()), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func (s *Server) newServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "glasswing",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memory",
		Description: "Search stored memories by semantic similarity",
	}, s.searchMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "store_memory",
		Description: "Embed a text and store it as a memory",
	}, s.storeMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_outputs",
		Description: "List recent recognition outputs, optionally filtered by kind",
	}, s.recentOutputs)

	return server
}

// Run serves MCP over stdin/stdout until the context is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// Serve runs the server over an arbitrary transport.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if err := s.newServer().Run(ctx, transport); err != nil {
		return goerr.Wrap(err, "mcp server terminated")
	}
	return nil
}

package memorytool

import (
	"context"

	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// RetrieveMemory embeds a query and returns the most similar memories.
type RetrieveMemory struct {
	deps Deps
}

func NewRetrieveMemory(deps Deps) *RetrieveMemory {
	return &RetrieveMemory{deps: deps}
}

func (t *RetrieveMemory) Spec() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "retrieve_memory",
			Description: "Retrieve stored memories most similar to a natural language query",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "What to look for",
					},
					"limit": {
						Type:        genai.TypeInteger,
						Description: "Max results (default: 5)",
					},
					"threshold": {
						Type:        genai.TypeNumber,
						Description: "Minimum cosine similarity (default: 0.3)",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

func (t *RetrieveMemory) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	query := argString(fc.Args, "query")
	if query == "" {
		return nil, goerr.New("query is required")
	}

	if t.deps.Embedder == nil {
		return nil, goerr.New("embedding capability is not available")
	}

	limit := argInt(fc.Args, "limit", 5)
	threshold := argFloat(fc.Args, "threshold", memory.DefaultSearchThreshold)

	vector, err := t.deps.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	hits, err := t.deps.Index.Search(ctx, vector, limit, threshold)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories")
	}

	results := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]any{
			"id":         hit.Record.ID,
			"text":       hit.Record.Text,
			"score":      hit.Score,
			"created_at": hit.Record.CreatedAt,
			"metadata":   hit.Record.Metadata,
		})
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"results": results,
			"count":   len(results),
		},
	}, nil
}

package memorytool

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// StoreMemory embeds a text and inserts it into the memory index.
type StoreMemory struct {
	deps Deps
}

func NewStoreMemory(deps Deps) *StoreMemory {
	return &StoreMemory{deps: deps}
}

func (t *StoreMemory) Spec() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "store_memory",
			Description: "Store a piece of information as a retrievable memory with its embedding vector",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text": {
						Type:        genai.TypeString,
						Description: "The content to remember",
					},
					"category": {
						Type:        genai.TypeString,
						Description: "Optional category label attached as metadata",
					},
				},
				Required: []string{"text"},
			},
		},
	}
}

func (t *StoreMemory) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	text := argString(fc.Args, "text")
	if text == "" {
		return nil, goerr.New("text is required")
	}

	if t.deps.Embedder == nil {
		return nil, goerr.New("embedding capability is not available")
	}

	vector, err := t.deps.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed text")
	}

	metadata := map[string]string{"source": "tool"}
	if category := argString(fc.Args, "category"); category != "" {
		metadata["category"] = category
	}

	id, err := t.deps.Index.Insert(ctx, text, vector, metadata)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory")
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"id":     id,
			"status": "stored",
		},
	}, nil
}

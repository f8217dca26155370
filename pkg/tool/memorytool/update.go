package memorytool

import (
	"context"

	"github.com/glasswing-io/glasswing/pkg/utils/logging"
	"google.golang.org/genai"
)

// UpdateMemory is declared so the assistant can call it, but the edit
// path is not implemented yet: records are immutable and an update would
// be a delete plus reinsert with a fresh embedding.
// TODO: implement as Delete + Insert once the assistant protocol carries
// the replacement embedding text.
type UpdateMemory struct{}

func NewUpdateMemory() *UpdateMemory {
	return &UpdateMemory{}
}

func (t *UpdateMemory) Spec() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "update_memory",
			Description: "Update a stored memory by ID (not yet supported; the request is logged)",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id": {
						Type:        genai.TypeInteger,
						Description: "ID of the memory to update",
					},
					"text": {
						Type:        genai.TypeString,
						Description: "Replacement content",
					},
				},
				Required: []string{"id", "text"},
			},
		},
	}
}

func (t *UpdateMemory) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	logging.From(ctx).Info("update_memory requested but not implemented",
		"id", argInt(fc.Args, "id", 0))

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"status": "unsupported",
			"note":   "memory updates are not implemented; store a new memory instead",
		},
	}, nil
}

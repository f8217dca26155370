package tool

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var ErrToolNotFound = goerr.New("tool not found")

// Registry maps function names to tools. The tool set is closed: names
// not registered here yield ErrToolNotFound, which callers treat as a
// log-and-ignore condition, never a fatal one.
type Registry struct {
	tools    map[string]Tool
	allTools []Tool
}

// New creates a registry with the given tools.
func New(tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		for _, fd := range t.Spec() {
			r.tools[fd.Name] = t
		}
	}

	return r
}

// Specs returns all function declarations for LLM function calling.
func (r *Registry) Specs() []*genai.FunctionDeclaration {
	var specs []*genai.FunctionDeclaration
	for _, t := range r.allTools {
		specs = append(specs, t.Spec()...)
	}
	return specs
}

// Names returns the registered function names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Execute dispatches the function call to its tool.
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, "unknown function name", goerr.V("name", fc.Name))
	}

	return t.Execute(ctx, fc)
}

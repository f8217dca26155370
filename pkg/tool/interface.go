package tool

import (
	"context"

	"google.golang.org/genai"
)

// Tool is an action the cloud assistant can invoke against the on-device
// stores through function calling.
type Tool interface {
	// Spec returns the function declarations this tool answers to.
	Spec() []*genai.FunctionDeclaration

	// Execute runs the tool for one function call and returns the
	// response payload.
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)
}

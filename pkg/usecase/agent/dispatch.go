package agent

import (
	"context"
	"errors"

	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/tool"
	"github.com/glasswing-io/glasswing/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// DispatchTool routes a function call from the assistant to the tool
// registry. Unknown tool names are logged and ignored, never fatal.
// Successful calls are recorded in the output store as tool_call outputs.
func (p *Pipeline) DispatchTool(ctx context.Context, name string, args map[string]any) (*genai.FunctionResponse, error) {
	if p.Status() != StatusEnabled {
		return nil, goerr.Wrap(ErrNotEnabled, "tool dispatch rejected")
	}

	logger := logging.From(ctx)
	if p.registry == nil {
		logger.Warn("tool dispatch without registry, ignoring", "tool", name)
		return nil, nil
	}

	resp, err := p.registry.Execute(ctx, genai.FunctionCall{Name: name, Args: args})
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			logger.Warn("unknown tool requested, ignoring", "tool", name)
			return nil, nil
		}
		return nil, goerr.Wrap(err, "tool execution failed", goerr.V("tool", name))
	}

	output := model.NewAgentOutput(model.OutputKindToolCall, name, 1.0)
	output.Metadata[model.MetaToolName] = model.StringValue(name)
	if err := p.outputs.Append(ctx, output); err != nil {
		logger.Warn("failed to record tool call", "error", err, "tool", name)
	}

	return resp, nil
}

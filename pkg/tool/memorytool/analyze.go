package memorytool

import (
	"context"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// AnalyzeContent summarizes what the session has captured so far: counts
// per output kind, cadence statistics, and index size.
type AnalyzeContent struct {
	deps Deps
}

func NewAnalyzeContent(deps Deps) *AnalyzeContent {
	return &AnalyzeContent{deps: deps}
}

func (t *AnalyzeContent) Spec() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "analyze_content",
			Description: "Summarize captured outputs: counts per kind, event cadence, and stored memory count",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"kind": {
						Type:        genai.TypeString,
						Description: "Restrict the analysis to one output kind",
						Enum:        []string{"asr", "ocr", "llm", "tool_call"},
					},
				},
			},
		},
	}
}

func (t *AnalyzeContent) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	kinds := []model.OutputKind{
		model.OutputKindASR, model.OutputKindOCR,
		model.OutputKindLLM, model.OutputKindToolCall,
	}
	if k := argString(fc.Args, "kind"); k != "" {
		kinds = []model.OutputKind{model.OutputKind(k)}
	}

	analysis := make(map[string]any, len(kinds))
	for _, kind := range kinds {
		outputs, err := t.deps.Outputs.ByKind(ctx, kind)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query outputs", goerr.V("kind", kind))
		}

		timestamps := make([]time.Time, 0, len(outputs))
		var confidence float64
		for _, output := range outputs {
			timestamps = append(timestamps, output.ProducedAt)
			confidence += output.Confidence
		}

		entry := map[string]any{"count": len(outputs)}
		if len(outputs) > 0 {
			entry["mean_confidence"] = confidence / float64(len(outputs))
		}

		cadence := correlate.Analyze(timestamps)
		if mean, ok := cadence.MeanInterval(); ok {
			entry["mean_interval_seconds"] = mean.Seconds()
		}
		if freq, ok := cadence.Frequency(); ok {
			entry["frequency_hz"] = freq
		}

		analysis[string(kind)] = entry
	}

	memories, err := t.deps.Index.Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count memories")
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"outputs":  analysis,
			"memories": memories,
		},
	}, nil
}

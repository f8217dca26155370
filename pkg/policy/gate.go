// Package policy decides whether a recognition result is worth keeping.
// Deployments drop Rego files into a directory to filter noisy captures
// (low confidence, blocklisted phrases) without code changes.
package policy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Decision is the outcome of evaluating the capture policy for one output.
type Decision struct {
	Keep bool
	Note string
}

// Gate evaluates the data.capture policy package. A Gate without loaded
// policies keeps everything.
type Gate struct {
	query *rego.PreparedEvalQuery
}

// New loads all Rego files from policyDir and prepares the capture query.
// An empty or missing directory yields a keep-all gate.
func New(ctx context.Context, policyDir string) (*Gate, error) {
	if policyDir == "" {
		return &Gate{}, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return &Gate{}, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.capture"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare capture query")
	}

	return &Gate{query: &prepared}, nil
}

// Evaluate runs the policy over one output. The policy sees kind, text,
// confidence and the number of correlated photos; it answers with `keep`
// (default true) and an optional `note`.
func (g *Gate) Evaluate(ctx context.Context, output *model.AgentOutput) (*Decision, error) {
	if g.query == nil {
		return &Decision{Keep: true}, nil
	}

	input := map[string]any{
		"kind":              string(output.Kind),
		"text":              output.Text,
		"confidence":        output.Confidence,
		"correlated_photos": len(output.CorrelatedAt),
	}

	rs, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate capture policy")
	}

	decision := &Decision{Keep: true}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return decision, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return decision, nil
	}

	if keep, ok := data["keep"].(bool); ok {
		decision.Keep = keep
	}
	if note, ok := data["note"].(string); ok {
		decision.Note = note
	}

	return decision, nil
}

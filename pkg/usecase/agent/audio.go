package agent

import (
	"context"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/stream"
	"github.com/glasswing-io/glasswing/pkg/utils/logging"
)

// processAudio is the per-item audio path: transcribe, correlate against
// the recent photo ring, gate, store, then index asynchronously. No lock
// is held across the recognition or embedding calls.
func (p *Pipeline) processAudio(ctx context.Context, item stream.Stamped[[]byte]) {
	if p.recognizer == nil {
		return
	}
	logger := logging.From(ctx)

	tr, err := p.recognizer.Transcribe(ctx, item.Payload)
	if err != nil {
		logger.Warn("transcription failed", "error", err)
		return
	}
	if tr == nil || tr.Text == "" {
		// Soft miss: no speech in this frame.
		return
	}

	p.statsMu.Lock()
	p.asrAt = append(p.asrAt, item.CapturedAt)
	p.statsMu.Unlock()

	output := model.NewAgentOutput(model.OutputKindASR, tr.Text, tr.Confidence)
	output.Metadata["captured_at"] = model.StringValue(item.CapturedAt.Format(time.RFC3339Nano))

	photos := p.ring.Snapshot()
	matches := correlate.Correlate(item.CapturedAt, photos, p.window)
	for _, m := range matches {
		output.CorrelatedAt = append(output.CorrelatedAt, m.CapturedAt)
	}

	p.persist(ctx, output, matches)
}

// persist applies the capture policy and, on keep, appends the output and
// schedules the embedding insert and the frame archive.
func (p *Pipeline) persist(ctx context.Context, output *model.AgentOutput, matches []stream.Stamped[[]byte]) {
	logger := logging.From(ctx)

	if p.gate != nil {
		decision, err := p.gate.Evaluate(ctx, output)
		if err != nil {
			logger.Warn("capture policy evaluation failed, keeping output", "error", err)
		} else if !decision.Keep {
			logger.Debug("output dropped by capture policy",
				"kind", output.Kind, "note", decision.Note)
			return
		}
	}

	if err := p.outputs.Append(ctx, output); err != nil {
		logger.Warn("failed to append output", "error", err, "kind", output.Kind)
		return
	}

	if p.embedder != nil && p.index != nil {
		p.tasks.Add(1)
		go func() {
			defer p.tasks.Done()
			p.indexOutput(ctx, output)
		}()
	}

	if p.archive != nil && len(matches) > 0 {
		best := matches[0]
		p.tasks.Add(1)
		go func() {
			defer p.tasks.Done()
			if err := p.archive.PutFrame(ctx, best.CapturedAt, best.Payload); err != nil {
				logger.Warn("failed to archive correlated frame", "error", err)
			}
		}()
	}
}

// indexOutput derives the embedding for an output's text and inserts it
// into the memory index. Failures are logged; the output store entry
// already exists and stays.
func (p *Pipeline) indexOutput(ctx context.Context, output *model.AgentOutput) {
	logger := logging.From(ctx)

	vector, err := p.embedder.Embed(ctx, output.Text)
	if err != nil {
		logger.Warn("failed to embed output text", "error", err, "id", output.ID)
		return
	}

	metadata := map[string]string{
		"kind":      string(output.Kind),
		"output_id": string(output.ID),
	}

	if _, err := p.index.Insert(ctx, output.Text, vector, metadata); err != nil {
		logger.Warn("failed to index output", "error", err, "id", output.ID)
	}
}

package agent

import (
	"context"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/stream"
	"github.com/glasswing-io/glasswing/pkg/utils/logging"
)

// processPhoto buffers the frame for cross-modality correlation, then
// mirrors the audio path with OCR. Buffering happens before recognition
// so the audio path can correlate against a frame even while its OCR is
// still running.
func (p *Pipeline) processPhoto(ctx context.Context, item stream.Stamped[[]byte]) {
	p.ring.Add(item)

	p.statsMu.Lock()
	p.photoAt = append(p.photoAt, item.CapturedAt)
	p.statsMu.Unlock()

	if p.recognizer == nil {
		return
	}
	logger := logging.From(ctx)

	ext, err := p.recognizer.ExtractText(ctx, item.Payload)
	if err != nil {
		logger.Warn("text extraction failed", "error", err)
		return
	}
	if ext == nil || ext.Text == "" {
		return
	}

	p.statsMu.Lock()
	p.ocrAt = append(p.ocrAt, item.CapturedAt)
	p.statsMu.Unlock()

	output := model.NewAgentOutput(model.OutputKindOCR, ext.Text, ext.Confidence)
	output.Metadata["captured_at"] = model.StringValue(item.CapturedAt.Format(time.RFC3339Nano))
	output.Metadata["blocks"] = model.IntValue(int64(len(ext.Blocks)))

	// Correlate against the other buffered frames, excluding this one.
	photos := p.ring.Snapshot()
	candidates := photos[:0:0]
	for _, c := range photos {
		if !c.CapturedAt.Equal(item.CapturedAt) {
			candidates = append(candidates, c)
		}
	}
	matches := correlate.Correlate(item.CapturedAt, candidates, p.window)
	for _, m := range matches {
		output.CorrelatedAt = append(output.CorrelatedAt, m.CapturedAt)
	}

	p.persist(ctx, output, matches)
}

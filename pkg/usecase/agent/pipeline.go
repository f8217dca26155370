// Package agent orchestrates the observation pipeline: it consumes the
// timestamped audio and photo streams, runs recognition, correlates the
// results across modalities, and feeds the output store and the memory
// index.
package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/policy"
	"github.com/glasswing-io/glasswing/pkg/stream"
	"github.com/glasswing-io/glasswing/pkg/tool"
	"github.com/glasswing-io/glasswing/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrAlreadyEnabled = goerr.New("pipeline is already enabled")
	ErrNotEnabled     = goerr.New("pipeline is not enabled")
)

type Status string

const (
	StatusDisabled  Status = "disabled"
	StatusEnabling  Status = "enabling"
	StatusEnabled   Status = "enabled"
	StatusDisabling Status = "disabling"
)

// Capabilities records which recognition services were available when the
// pipeline was enabled. A missing capability degrades the matching path
// instead of blocking Enable.
type Capabilities struct {
	ASR       bool
	OCR       bool
	Embedding bool
}

// DefaultPhotoBuffer is the default capacity of the recent-photo ring.
const DefaultPhotoBuffer = 50

// Pipeline is the session state machine. Audio and photo items are
// processed concurrently with each other but serially within a modality,
// which is what makes correlation timestamp-based rather than
// sequence-based.
type Pipeline struct {
	mu     sync.Mutex
	status Status

	outputs    interfaces.OutputStore
	index      interfaces.MemoryIndex
	recognizer adapter.Recognizer
	embedder   adapter.Embedder
	registry   *tool.Registry
	gate       *policy.Gate
	archive    adapter.Archive

	window   time.Duration
	photoCap int

	audioCh *stream.Channel[[]byte]
	photoCh *stream.Channel[[]byte]
	cancel  context.CancelFunc
	loops   sync.WaitGroup
	tasks   sync.WaitGroup

	ring *photoRing

	statsMu sync.Mutex
	asrAt   []time.Time
	ocrAt   []time.Time
	photoAt []time.Time
}

type Option func(*Pipeline)

// WithWindow overrides the correlation window (default 2s).
func WithWindow(window time.Duration) Option {
	return func(p *Pipeline) {
		if window > 0 {
			p.window = window
		}
	}
}

// WithPhotoBuffer overrides the photo ring capacity (default 50).
func WithPhotoBuffer(capacity int) Option {
	return func(p *Pipeline) {
		if capacity > 0 {
			p.photoCap = capacity
		}
	}
}

// WithRegistry attaches the tool registry used by DispatchTool.
func WithRegistry(registry *tool.Registry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// WithGate attaches a capture policy gate.
func WithGate(gate *policy.Gate) Option {
	return func(p *Pipeline) {
		p.gate = gate
	}
}

// WithArchive attaches a frame archive for correlated photos.
func WithArchive(archive adapter.Archive) Option {
	return func(p *Pipeline) {
		p.archive = archive
	}
}

// New creates a disabled pipeline. recognizer and embedder may be nil:
// the corresponding capabilities are then reported as inactive and their
// paths skipped.
func New(outputs interfaces.OutputStore, index interfaces.MemoryIndex, recognizer adapter.Recognizer, embedder adapter.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		status:     StatusDisabled,
		outputs:    outputs,
		index:      index,
		recognizer: recognizer,
		embedder:   embedder,
		window:     correlate.DefaultWindow,
		photoCap:   DefaultPhotoBuffer,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) Capabilities() Capabilities {
	return Capabilities{
		ASR:       p.recognizer != nil,
		OCR:       p.recognizer != nil,
		Embedding: p.embedder != nil && p.index != nil,
	}
}

// Enable subscribes to both sources and starts the consumption loops. It
// fails with ErrAlreadyEnabled unless the pipeline is disabled. Missing
// recognition or embedding services do not block enabling.
func (p *Pipeline) Enable(ctx context.Context, audio, photo <-chan []byte) error {
	p.mu.Lock()
	if p.status != StatusDisabled {
		p.mu.Unlock()
		return goerr.Wrap(ErrAlreadyEnabled, "enable rejected", goerr.V("status", p.status))
	}
	p.status = StatusEnabling
	p.mu.Unlock()

	logger := logging.From(ctx)
	caps := p.Capabilities()
	logger.Info("enabling agent pipeline",
		"asr", caps.ASR, "ocr", caps.OCR, "embedding", caps.Embedding,
		"window", p.window, "photo_buffer", p.photoCap)

	p.ring = newPhotoRing(p.photoCap)

	p.statsMu.Lock()
	p.asrAt = nil
	p.ocrAt = nil
	p.photoAt = nil
	p.statsMu.Unlock()

	p.audioCh = stream.New[[]byte]()
	p.photoCh = stream.New[[]byte]()
	if err := p.audioCh.Attach(audio); err != nil {
		p.setStatus(StatusDisabled)
		return err
	}
	if err := p.photoCh.Attach(photo); err != nil {
		p.audioCh.Detach()
		p.setStatus(StatusDisabled)
		return err
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	loopCtx = logging.With(loopCtx, logger)
	p.cancel = cancel

	audioSub := p.audioCh.Subscribe()
	photoSub := p.photoCh.Subscribe()

	p.loops.Add(2)
	go p.consume(loopCtx, audioSub, p.processAudio)
	go p.consume(loopCtx, photoSub, p.processPhoto)

	p.setStatus(StatusEnabled)
	return nil
}

// Disable stops consumption and returns the session summary. It is
// idempotent: disabling a disabled pipeline returns (nil, nil).
// Recognitions already in flight finish and their results are discarded
// by the terminated loops rather than forcibly aborted.
func (p *Pipeline) Disable(ctx context.Context) (*correlate.Report, error) {
	p.mu.Lock()
	if p.status != StatusEnabled {
		p.mu.Unlock()
		return nil, nil
	}
	p.status = StatusDisabling
	p.mu.Unlock()

	p.audioCh.Detach()
	p.photoCh.Detach()
	p.cancel()
	p.loops.Wait()
	p.tasks.Wait()

	report := p.Report()
	logger := logging.From(ctx)
	logger.Info("agent pipeline disabled",
		"asr_events", report.EventCount[model.OutputKindASR],
		"ocr_events", report.EventCount[model.OutputKindOCR],
		"photos", report.PhotoCount)

	p.setStatus(StatusDisabled)
	return report, nil
}

// Report builds the correlation summary for the current session.
func (p *Pipeline) Report() *correlate.Report {
	p.statsMu.Lock()
	asr := append([]time.Time(nil), p.asrAt...)
	ocr := append([]time.Time(nil), p.ocrAt...)
	photos := append([]time.Time(nil), p.photoAt...)
	p.statsMu.Unlock()

	return correlate.BuildReport(asr, ocr, photos, p.window)
}

func (p *Pipeline) setStatus(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// consume drains a subscription until it terminates. Per-item failures
// are logged and the loop moves on; only the subscription's terminal
// condition ends it.
func (p *Pipeline) consume(ctx context.Context, sub *stream.Subscription[[]byte], process func(context.Context, stream.Stamped[[]byte])) {
	defer p.loops.Done()
	defer sub.Close()

	logger := logging.From(ctx)
	for {
		item, err := sub.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, stream.ErrChannelClosed) {
				logger.Warn("stream terminated with producer error", "error", err)
			}
			return
		}
		process(ctx, item)
	}
}

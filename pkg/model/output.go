package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidOutput = goerr.New("invalid agent output")
)

type OutputID string

// NewOutputID generates a new unique OutputID
func NewOutputID() OutputID {
	return OutputID(uuid.New().String())
}

type OutputKind string

const (
	OutputKindASR      OutputKind = "asr"
	OutputKindOCR      OutputKind = "ocr"
	OutputKindLLM      OutputKind = "llm"
	OutputKindToolCall OutputKind = "tool_call"
)

// MetaToolName is the metadata key that every tool_call output must carry.
const MetaToolName = "tool_name"

// AgentOutput is a single result produced by the agent pipeline: a speech
// transcript, an OCR extraction, an LLM response, or a tool invocation.
// It is immutable after construction. CorrelatedAt holds the capture times
// of nearby photo frames, ordered by proximity; they reference frames by
// timestamp value only, not by ownership.
type AgentOutput struct {
	ID           OutputID
	ProducedAt   time.Time
	Kind         OutputKind
	Text         string
	Confidence   float64
	CorrelatedAt []time.Time
	Metadata     map[string]Value
}

// NewAgentOutput creates an AgentOutput with a fresh ID and the current
// time. Confidence is clamped into [0, 1].
func NewAgentOutput(kind OutputKind, text string, confidence float64) *AgentOutput {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &AgentOutput{
		ID:         NewOutputID(),
		ProducedAt: time.Now(),
		Kind:       kind,
		Text:       text,
		Confidence: confidence,
		Metadata:   map[string]Value{},
	}
}

// Validate checks structural invariants: confidence range and the
// tool_name metadata requirement for tool_call outputs.
func (x *AgentOutput) Validate() error {
	if x.Confidence < 0 || x.Confidence > 1 {
		return goerr.Wrap(ErrInvalidOutput, "confidence out of range",
			goerr.V("confidence", x.Confidence))
	}

	switch x.Kind {
	case OutputKindASR, OutputKindOCR, OutputKindLLM:
	case OutputKindToolCall:
		if _, ok := x.Metadata[MetaToolName]; !ok {
			return goerr.Wrap(ErrInvalidOutput, "tool_call output requires tool_name metadata",
				goerr.V("id", x.ID))
		}
	default:
		return goerr.Wrap(ErrInvalidOutput, "unknown output kind",
			goerr.V("kind", x.Kind))
	}

	return nil
}

// Clone returns a deep copy so that stored outputs cannot be mutated
// through query results.
func (x *AgentOutput) Clone() *AgentOutput {
	copied := &AgentOutput{
		ID:         x.ID,
		ProducedAt: x.ProducedAt,
		Kind:       x.Kind,
		Text:       x.Text,
		Confidence: x.Confidence,
	}

	if x.CorrelatedAt != nil {
		copied.CorrelatedAt = make([]time.Time, len(x.CorrelatedAt))
		copy(copied.CorrelatedAt, x.CorrelatedAt)
	}

	if x.Metadata != nil {
		copied.Metadata = make(map[string]Value, len(x.Metadata))
		for k, v := range x.Metadata {
			copied.Metadata[k] = v
		}
	}

	return copied
}

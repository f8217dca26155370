package model_test

import (
	"testing"
	"time"

	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestNewAgentOutput(t *testing.T) {
	out := model.NewAgentOutput(model.OutputKindASR, "hello", 0.8)

	gt.V(t, out.ID).NotEqual("")
	gt.Equal(t, out.Kind, model.OutputKindASR)
	gt.Equal(t, out.Text, "hello")
	gt.Equal(t, out.Confidence, 0.8)
	gt.False(t, out.ProducedAt.IsZero())
	gt.V(t, out.Metadata).NotNil()
}

func TestNewAgentOutputClampsConfidence(t *testing.T) {
	testCases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 0},
		{"above one", 1.5, 1},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"in range", 0.42, 0.42},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := model.NewAgentOutput(model.OutputKindOCR, "x", tc.in)
			gt.Equal(t, out.Confidence, tc.want)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid asr", func(t *testing.T) {
		out := model.NewAgentOutput(model.OutputKindASR, "x", 0.5)
		gt.NoError(t, out.Validate())
	})

	t.Run("tool_call requires tool_name", func(t *testing.T) {
		out := model.NewAgentOutput(model.OutputKindToolCall, "result", 1.0)
		gt.Error(t, out.Validate())

		out.Metadata[model.MetaToolName] = model.StringValue("store_memory")
		gt.NoError(t, out.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		out := model.NewAgentOutput(model.OutputKind("video"), "x", 0.5)
		gt.Error(t, out.Validate())
	})

	t.Run("confidence out of range", func(t *testing.T) {
		out := model.NewAgentOutput(model.OutputKindASR, "x", 0.5)
		out.Confidence = 1.2
		gt.Error(t, out.Validate())
	})
}

func TestClone(t *testing.T) {
	out := model.NewAgentOutput(model.OutputKindOCR, "text", 0.7)
	out.CorrelatedAt = []time.Time{time.Now()}
	out.Metadata["k"] = model.StringValue("v")

	copied := out.Clone()
	gt.Equal(t, copied.ID, out.ID)
	gt.Equal(t, copied.Text, out.Text)

	copied.Text = "changed"
	copied.CorrelatedAt[0] = time.Time{}
	copied.Metadata["k"] = model.StringValue("changed")

	gt.Equal(t, out.Text, "text")
	gt.False(t, out.CorrelatedAt[0].IsZero())
	v, _ := out.Metadata["k"].AsString()
	gt.Equal(t, v, "v")
}

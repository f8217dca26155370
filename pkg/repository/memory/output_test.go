package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func outputAt(kind model.OutputKind, text string, at time.Time) *model.AgentOutput {
	out := model.NewAgentOutput(kind, text, 0.9)
	out.ProducedAt = at
	return out
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	// Appended out of chronological order; Recent must re-sort.
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "second", base.Add(2*time.Second))))
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "third", base.Add(3*time.Second))))
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindOCR, "first", base.Add(time.Second))))

	recent, err := store.Recent(ctx, 2)
	gt.NoError(t, err)
	gt.A(t, recent).Length(2)
	gt.Equal(t, recent[0].Text, "third")
	gt.Equal(t, recent[1].Text, "second")
}

func TestRecentLimitLargerThanStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "only", time.Now())))

	recent, err := store.Recent(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, recent).Length(1)
}

func TestAppendValidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	// tool_call without tool_name metadata is invalid.
	bad := model.NewAgentOutput(model.OutputKindToolCall, "result", 1.0)
	gt.Error(t, store.Append(ctx, bad))

	count, err := store.Count(ctx)
	gt.NoError(t, err)
	gt.Equal(t, count, 0)
}

func TestByKind(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	base := time.Now()
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "a1", base)))
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindOCR, "o1", base)))
	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "a2", base)))

	asr, err := store.ByKind(ctx, model.OutputKindASR)
	gt.NoError(t, err)
	gt.A(t, asr).Length(2)
	gt.Equal(t, asr[0].Text, "a1")
	gt.Equal(t, asr[1].Text, "a2")

	llm, err := store.ByKind(ctx, model.OutputKindLLM)
	gt.NoError(t, err)
	gt.A(t, llm).Length(0)
}

func TestInRangeHalfOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		gt.NoError(t, store.Append(ctx,
			outputAt(model.OutputKindASR, "ev", base.Add(time.Duration(i)*time.Second))))
	}

	// [base+1s, base+3s): includes +1s, +2s, excludes +3s.
	got, err := store.InRange(ctx, base.Add(time.Second), base.Add(3*time.Second))
	gt.NoError(t, err)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0].ProducedAt, base.Add(time.Second))
	gt.Equal(t, got[1].ProducedAt, base.Add(2*time.Second))
}

func TestInRangeSkipsZeroTimestamps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	out := model.NewAgentOutput(model.OutputKindASR, "no time", 0.5)
	out.ProducedAt = time.Time{}
	gt.NoError(t, store.Append(ctx, out))

	got, err := store.InRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	gt.NoError(t, err)
	gt.A(t, got).Length(0)
}

func TestResultIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	original := model.NewAgentOutput(model.OutputKindASR, "original", 0.8)
	original.Metadata["k"] = model.StringValue("v")
	gt.NoError(t, store.Append(ctx, original))

	// Mutating the appended output after the fact changes nothing.
	original.Text = "mutated outside"

	recent, err := store.Recent(ctx, 1)
	gt.NoError(t, err)
	gt.Equal(t, recent[0].Text, "original")

	// Mutating a query result changes nothing either.
	recent[0].Text = "mutated result"
	again, err := store.Recent(ctx, 1)
	gt.NoError(t, err)
	gt.Equal(t, again[0].Text, "original")
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutputStore()

	gt.NoError(t, store.Append(ctx, outputAt(model.OutputKindASR, "x", time.Now())))
	gt.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	gt.NoError(t, err)
	gt.Equal(t, count, 0)
}

package firestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/glasswing-io/glasswing/pkg/repository/firestore"
	"github.com/m-mizutani/gt"
)

const testDimension = 8

func setupClient(t *testing.T) *firestore.Client {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	client, err := firestore.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestFirestoreOutputRoundTrip(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	outputs := client.Outputs()
	gt.NoError(t, outputs.Clear(ctx))

	out := model.NewAgentOutput(model.OutputKindASR, "firestore roundtrip", 0.75)
	out.CorrelatedAt = []time.Time{time.Now().Add(-time.Second).UTC()}
	out.Metadata["captured_at"] = model.StringValue("2026-03-14T09:00:00Z")

	gt.NoError(t, outputs.Append(ctx, out))

	recent, err := outputs.Recent(ctx, 1)
	gt.NoError(t, err)
	gt.A(t, recent).Length(1)
	gt.Equal(t, recent[0].ID, out.ID)
	gt.Equal(t, recent[0].Text, "firestore roundtrip")
	gt.Equal(t, recent[0].Confidence, 0.75)
	gt.A(t, recent[0].CorrelatedAt).Length(1)

	captured, ok := recent[0].Metadata["captured_at"].AsString()
	gt.True(t, ok)
	gt.Equal(t, captured, "2026-03-14T09:00:00Z")
}

func TestFirestoreOutputQueries(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	outputs := client.Outputs()
	gt.NoError(t, outputs.Clear(ctx))

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 3; i++ {
		out := model.NewAgentOutput(model.OutputKindASR, "asr", 0.9)
		out.ProducedAt = base.Add(time.Duration(i) * time.Minute)
		gt.NoError(t, outputs.Append(ctx, out))
	}
	ocr := model.NewAgentOutput(model.OutputKindOCR, "ocr", 0.9)
	ocr.ProducedAt = base.Add(90 * time.Second)
	gt.NoError(t, outputs.Append(ctx, ocr))

	t.Run("recent orders descending", func(t *testing.T) {
		recent, err := outputs.Recent(ctx, 10)
		gt.NoError(t, err)
		gt.A(t, recent).Length(4)
		for i := 0; i < len(recent)-1; i++ {
			gt.True(t, !recent[i].ProducedAt.Before(recent[i+1].ProducedAt))
		}
	})

	t.Run("by kind keeps insertion order", func(t *testing.T) {
		asr, err := outputs.ByKind(ctx, model.OutputKindASR)
		gt.NoError(t, err)
		gt.A(t, asr).Length(3)
		for i := 0; i < len(asr)-1; i++ {
			gt.True(t, asr[i].ProducedAt.Before(asr[i+1].ProducedAt))
		}
	})

	t.Run("in range is half open", func(t *testing.T) {
		got, err := outputs.InRange(ctx, base, base.Add(2*time.Minute))
		gt.NoError(t, err)
		// base, base+1m, base+90s; base+2m excluded.
		gt.A(t, got).Length(3)
	})

	count, err := outputs.Count(ctx)
	gt.NoError(t, err)
	gt.Equal(t, count, 4)
}

func TestFirestoreMemoryIndex(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	index := client.Memories(testDimension)
	gt.NoError(t, index.Clear(ctx))
	gt.Equal(t, index.Dimension(), testDimension)

	aligned := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	diagonal := []float32{1, 1, 0, 0, 0, 0, 0, 0}
	orthogonal := []float32{0, 0, 0, 0, 0, 0, 0, 1}

	_, err := index.Insert(ctx, "aligned", aligned, map[string]string{"k": "v"})
	gt.NoError(t, err)
	_, err = index.Insert(ctx, "diagonal", diagonal, nil)
	gt.NoError(t, err)
	_, err = index.Insert(ctx, "orthogonal", orthogonal, nil)
	gt.NoError(t, err)

	// Give the vector index a moment.
	time.Sleep(2 * time.Second)

	hits, err := index.Search(ctx, aligned, 3, 0.5)
	gt.NoError(t, err)
	gt.A(t, hits).Length(2)
	gt.Equal(t, hits[0].Record.Text, "aligned")
	gt.Equal(t, hits[0].Record.Metadata["k"], "v")

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := index.Insert(ctx, "bad", []float32{1, 0}, nil)
		gt.Error(t, err)

		_, err = index.Search(ctx, []float32{1, 0}, 3, 0)
		gt.Error(t, err)
	})

	t.Run("delete unknown id is a no-op", func(t *testing.T) {
		gt.NoError(t, index.Delete(ctx, 12345))
	})

	t.Run("delete removes record", func(t *testing.T) {
		id, err := index.Insert(ctx, "short lived", aligned, nil)
		gt.NoError(t, err)
		gt.NoError(t, index.Delete(ctx, id))

		records, err := index.All(ctx)
		gt.NoError(t, err)
		for _, r := range records {
			gt.V(t, r.Text).NotEqual("short lived")
		}
	})
}

package adapter_test

import (
	"context"
	"math"
	"testing"

	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/m-mizutani/gt"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	e := adapter.NewLocalEmbedder(64)

	a, err := e.Embed(ctx, "coffee with Dana at the station")
	gt.NoError(t, err)
	b, err := e.Embed(ctx, "coffee with Dana at the station")
	gt.NoError(t, err)

	gt.Equal(t, a, b)
	gt.A(t, a).Length(64)
	gt.Equal(t, e.Dimension(), 64)
}

func TestLocalEmbedderNormalized(t *testing.T) {
	ctx := context.Background()
	e := adapter.NewLocalEmbedder(64)

	vec, err := e.Embed(ctx, "some sentence with several words")
	gt.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	gt.True(t, math.Abs(math.Sqrt(norm)-1) < 1e-5)
}

func TestLocalEmbedderSimilarity(t *testing.T) {
	ctx := context.Background()
	e := adapter.NewLocalEmbedder(128)

	coffee1, err := e.Embed(ctx, "drinking coffee in the morning")
	gt.NoError(t, err)
	coffee2, err := e.Embed(ctx, "morning coffee break")
	gt.NoError(t, err)
	trains, err := e.Embed(ctx, "railway timetable platform nine")
	gt.NoError(t, err)

	related := cosine(coffee1, coffee2)
	unrelated := cosine(coffee1, trains)
	gt.True(t, related > unrelated)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestLocalRecognizerTranscribe(t *testing.T) {
	ctx := context.Background()
	r := adapter.NewLocalRecognizer()

	t.Run("printable text", func(t *testing.T) {
		tr, err := r.Transcribe(ctx, []byte("let's meet tomorrow at ten"))
		gt.NoError(t, err)
		gt.V(t, tr).NotNil()
		gt.Equal(t, tr.Text, "let's meet tomorrow at ten")
		gt.True(t, tr.Confidence > 0)
		gt.True(t, tr.Confidence < 1)
	})

	t.Run("soft miss on binary payload", func(t *testing.T) {
		tr, err := r.Transcribe(ctx, []byte{0x00, 0xff, 0x12})
		gt.NoError(t, err)
		gt.True(t, tr == nil)
	})

	t.Run("soft miss on empty payload", func(t *testing.T) {
		tr, err := r.Transcribe(ctx, nil)
		gt.NoError(t, err)
		gt.True(t, tr == nil)
	})
}

func TestLocalRecognizerExtractText(t *testing.T) {
	ctx := context.Background()
	r := adapter.NewLocalRecognizer()

	ext, err := r.ExtractText(ctx, []byte("PLATFORM 9\nDEPARTURES\n"))
	gt.NoError(t, err)
	gt.V(t, ext).NotNil()
	gt.A(t, ext.Blocks).Length(2)
	gt.Equal(t, ext.Blocks[0].Text, "PLATFORM 9")
	gt.Equal(t, ext.Blocks[1].Text, "DEPARTURES")
}

package correlate_test

import (
	"testing"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/stream"
	"github.com/m-mizutani/gt"
)

func stamped(at time.Time, name string) stream.Stamped[string] {
	return stream.Stamped[string]{Payload: name, CapturedAt: at}
}

func TestCorrelateWindow(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ref := base.Add(10 * time.Second)

	candidates := []stream.Stamped[string]{
		stamped(base.Add(9*time.Second), "before-in"),
		stamped(base.Add(12500*time.Millisecond), "after-out"),
		stamped(base.Add(12*time.Second), "boundary"),
		stamped(base.Add(7*time.Second), "far-before"),
	}

	matched := correlate.Correlate(ref, candidates, 2*time.Second)
	gt.A(t, matched).Length(2)

	// Closest first: 1s before, then exactly on the 2s boundary (inclusive).
	gt.Equal(t, matched[0].Payload, "before-in")
	gt.Equal(t, matched[1].Payload, "boundary")
}

func TestCorrelateSymmetric(t *testing.T) {
	ref := time.Date(2026, 3, 14, 9, 0, 10, 0, time.UTC)

	candidates := []stream.Stamped[string]{
		stamped(ref.Add(-1500*time.Millisecond), "before"),
		stamped(ref.Add(1500*time.Millisecond), "after"),
	}

	matched := correlate.Correlate(ref, candidates, 2*time.Second)
	gt.A(t, matched).Length(2)
}

func TestCorrelateStableTies(t *testing.T) {
	ref := time.Date(2026, 3, 14, 9, 0, 10, 0, time.UTC)

	// Same absolute distance on both sides: input order must survive.
	candidates := []stream.Stamped[string]{
		stamped(ref.Add(time.Second), "first"),
		stamped(ref.Add(-time.Second), "second"),
	}

	matched := correlate.Correlate(ref, candidates, 2*time.Second)
	gt.A(t, matched).Length(2)
	gt.Equal(t, matched[0].Payload, "first")
	gt.Equal(t, matched[1].Payload, "second")
}

func TestCorrelateEmpty(t *testing.T) {
	ref := time.Now()

	matched := correlate.Correlate(ref, []stream.Stamped[string](nil), 2*time.Second)
	gt.A(t, matched).Length(0)

	matched = correlate.Correlate(ref, []stream.Stamped[string]{
		stamped(ref.Add(time.Hour), "far"),
	}, 2*time.Second)
	gt.A(t, matched).Length(0)
}

func TestBestMatch(t *testing.T) {
	ref := time.Date(2026, 3, 14, 9, 0, 10, 0, time.UTC)

	candidates := []stream.Stamped[string]{
		stamped(ref.Add(-1800*time.Millisecond), "far"),
		stamped(ref.Add(200*time.Millisecond), "near"),
	}

	best, ok := correlate.BestMatch(ref, candidates, 2*time.Second)
	gt.True(t, ok)
	gt.Equal(t, best.Payload, "near")

	_, ok = correlate.BestMatch(ref, []stream.Stamped[string](nil), 2*time.Second)
	gt.False(t, ok)
}

func TestAnalyze(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	// Deliberately out of order; Analyze sorts a copy.
	input := []time.Time{
		base.Add(4 * time.Second),
		base,
		base.Add(1 * time.Second),
	}

	a := correlate.Analyze(input)
	gt.Equal(t, a.Count, 3)
	gt.Equal(t, a.First, base)
	gt.Equal(t, a.Last, base.Add(4*time.Second))
	gt.Equal(t, a.TotalSpan, 4*time.Second)
	gt.Equal(t, a.Intervals, []time.Duration{time.Second, 3 * time.Second})

	// Input slice is untouched.
	gt.Equal(t, input[0], base.Add(4*time.Second))

	mean, ok := a.MeanInterval()
	gt.True(t, ok)
	gt.Equal(t, mean, 2*time.Second)

	freq, ok := a.Frequency()
	gt.True(t, ok)
	gt.Equal(t, freq, 0.5)
}

func TestAnalyzeDegenerate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		a := correlate.Analyze(nil)
		gt.Equal(t, a.Count, 0)

		_, ok := a.MeanInterval()
		gt.False(t, ok)
		_, ok = a.Frequency()
		gt.False(t, ok)
	})

	t.Run("single", func(t *testing.T) {
		a := correlate.Analyze([]time.Time{time.Now()})
		gt.Equal(t, a.Count, 1)
		gt.Equal(t, a.TotalSpan, time.Duration(0))

		_, ok := a.MeanInterval()
		gt.False(t, ok)
		_, ok = a.Frequency()
		gt.False(t, ok)
	})

	t.Run("identical timestamps", func(t *testing.T) {
		at := time.Now()
		a := correlate.Analyze([]time.Time{at, at, at})
		gt.Equal(t, a.Count, 3)

		mean, ok := a.MeanInterval()
		gt.True(t, ok)
		gt.Equal(t, mean, time.Duration(0))

		// Zero span: frequency is undefined, not infinite.
		_, ok = a.Frequency()
		gt.False(t, ok)
	})
}

package correlate

import (
	"sort"
	"time"

	"github.com/glasswing-io/glasswing/pkg/stream"
)

// DefaultWindow is the default correlation radius. Two seconds balances
// recall against spurious association for speech/photo co-occurrence;
// callers widen it explicitly when needed.
const DefaultWindow = 2 * time.Second

// Correlate returns every candidate whose capture time lies within window
// of ref, sorted ascending by absolute distance to ref. Equal distances
// keep the original candidate order. Matching is symmetric around ref:
// capture order between modalities is not guaranteed, so "before only"
// matching would drop valid pairs.
func Correlate[T any](ref time.Time, candidates []stream.Stamped[T], window time.Duration) []stream.Stamped[T] {
	matched := make([]stream.Stamped[T], 0, len(candidates))
	for _, c := range candidates {
		if absDistance(ref, c.CapturedAt) <= window {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return absDistance(ref, matched[i].CapturedAt) < absDistance(ref, matched[j].CapturedAt)
	})

	return matched
}

// BestMatch returns the candidate closest to ref within window, if any.
func BestMatch[T any](ref time.Time, candidates []stream.Stamped[T], window time.Duration) (stream.Stamped[T], bool) {
	matched := Correlate(ref, candidates, window)
	if len(matched) == 0 {
		var zero stream.Stamped[T]
		return zero, false
	}
	return matched[0], true
}

func absDistance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// Analysis describes the cadence of a series of timestamps.
type Analysis struct {
	Count     int
	First     time.Time
	Last      time.Time
	TotalSpan time.Duration
	Intervals []time.Duration
}

// Analyze sorts the timestamps ascending and computes the gaps between
// consecutive events. Empty and single-element inputs are valid.
func Analyze(timestamps []time.Time) Analysis {
	if len(timestamps) == 0 {
		return Analysis{}
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	a := Analysis{
		Count: len(sorted),
		First: sorted[0],
		Last:  sorted[len(sorted)-1],
	}
	a.TotalSpan = a.Last.Sub(a.First)

	for i := 1; i < len(sorted); i++ {
		a.Intervals = append(a.Intervals, sorted[i].Sub(sorted[i-1]))
	}

	return a
}

// MeanInterval returns the arithmetic mean of the event gaps. It reports
// false when there are fewer than two events.
func (a Analysis) MeanInterval() (time.Duration, bool) {
	if len(a.Intervals) == 0 {
		return 0, false
	}

	var total time.Duration
	for _, iv := range a.Intervals {
		total += iv
	}
	return total / time.Duration(len(a.Intervals)), true
}

// Frequency returns events per second over the total span. It reports
// false when the series has at most one event or spans zero time.
func (a Analysis) Frequency() (float64, bool) {
	if a.Count <= 1 || a.TotalSpan <= 0 {
		return 0, false
	}
	return float64(a.Count-1) / a.TotalSpan.Seconds(), true
}

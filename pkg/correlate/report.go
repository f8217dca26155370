package correlate

import (
	"time"

	"github.com/glasswing-io/glasswing/pkg/model"
)

// Report aggregates how well each recognition series lined up with the
// photo series over a session. It is computed on demand and never
// persisted.
type Report struct {
	Window          time.Duration
	EventCount      map[model.OutputKind]int
	PhotoCount      int
	CorrelationRate map[model.OutputKind]float64
	Timing          map[model.OutputKind]Analysis
	PhotoTiming     Analysis
}

// BuildReport counts, for each event series independently, how many events
// have at least one photo within window, and analyzes the cadence of every
// series. Rates are 0.0 for empty series; no division by zero.
func BuildReport(asr, ocr, photos []time.Time, window time.Duration) *Report {
	if window <= 0 {
		window = DefaultWindow
	}

	r := &Report{
		Window:     window,
		PhotoCount: len(photos),
		EventCount: map[model.OutputKind]int{
			model.OutputKindASR: len(asr),
			model.OutputKindOCR: len(ocr),
		},
		CorrelationRate: map[model.OutputKind]float64{
			model.OutputKindASR: correlationRate(asr, photos, window),
			model.OutputKindOCR: correlationRate(ocr, photos, window),
		},
		Timing: map[model.OutputKind]Analysis{
			model.OutputKindASR: Analyze(asr),
			model.OutputKindOCR: Analyze(ocr),
		},
		PhotoTiming: Analyze(photos),
	}

	return r
}

func correlationRate(events, photos []time.Time, window time.Duration) float64 {
	if len(events) == 0 {
		return 0
	}

	correlated := 0
	for _, ev := range events {
		for _, ph := range photos {
			if absDistance(ev, ph) <= window {
				correlated++
				break
			}
		}
	}

	return float64(correlated) / float64(len(events))
}

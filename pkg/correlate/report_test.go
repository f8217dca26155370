package correlate_test

import (
	"testing"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestBuildReport(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	asr := []time.Time{
		base,                       // photo at base+1s, correlated
		base.Add(10 * time.Second), // nearest photo 9s away, not correlated
	}
	ocr := []time.Time{
		base.Add(500 * time.Millisecond), // correlated
	}
	photos := []time.Time{
		base.Add(time.Second),
	}

	r := correlate.BuildReport(asr, ocr, photos, 2*time.Second)

	gt.Equal(t, r.Window, 2*time.Second)
	gt.Equal(t, r.PhotoCount, 1)
	gt.Equal(t, r.EventCount[model.OutputKindASR], 2)
	gt.Equal(t, r.EventCount[model.OutputKindOCR], 1)
	gt.Equal(t, r.CorrelationRate[model.OutputKindASR], 0.5)
	gt.Equal(t, r.CorrelationRate[model.OutputKindOCR], 1.0)

	gt.Equal(t, r.Timing[model.OutputKindASR].Count, 2)
	gt.Equal(t, r.PhotoTiming.Count, 1)
}

func TestBuildReportEmptySeries(t *testing.T) {
	r := correlate.BuildReport(nil, nil, nil, 2*time.Second)

	gt.Equal(t, r.PhotoCount, 0)
	gt.Equal(t, r.EventCount[model.OutputKindASR], 0)
	// No events: rate is zero, never NaN.
	gt.Equal(t, r.CorrelationRate[model.OutputKindASR], 0.0)
	gt.Equal(t, r.CorrelationRate[model.OutputKindOCR], 0.0)
}

func TestBuildReportDefaultWindow(t *testing.T) {
	r := correlate.BuildReport(nil, nil, nil, 0)
	gt.Equal(t, r.Window, correlate.DefaultWindow)
}

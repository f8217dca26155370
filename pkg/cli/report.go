package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/glasswing-io/glasswing/pkg/correlate"
	"github.com/glasswing-io/glasswing/pkg/model"
	"github.com/urfave/cli/v3"
)

func reportCommand() *cli.Command {
	var (
		cfg   config
		since time.Duration
	)

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "since",
			Aliases:     []string{"s"},
			Usage:       "Report over outputs produced within this duration",
			Value:       time.Hour,
			Sources:     cli.EnvVars("GLASSWING_REPORT_SINCE"),
			Destination: &since,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "report",
		Usage: "Summarize correlation over stored outputs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			outputs, _, closeStores, err := cfg.newStores(ctx)
			if err != nil {
				return err
			}
			defer closeStores()

			end := time.Now().Add(time.Second)
			start := end.Add(-since)
			stored, err := outputs.InRange(ctx, start, end)
			if err != nil {
				return err
			}

			window := cfg.window
			if window <= 0 {
				window = correlate.DefaultWindow
			}

			var asr, ocr []time.Time
			photoSet := make(map[time.Time]struct{})
			for _, out := range stored {
				switch out.Kind {
				case model.OutputKindASR:
					asr = append(asr, out.ProducedAt)
				case model.OutputKindOCR:
					ocr = append(ocr, out.ProducedAt)
				}
				for _, at := range out.CorrelatedAt {
					photoSet[at] = struct{}{}
				}
			}
			photos := make([]time.Time, 0, len(photoSet))
			for at := range photoSet {
				photos = append(photos, at)
			}
			sort.Slice(photos, func(i, j int) bool { return photos[i].Before(photos[j]) })

			fmt.Fprintf(c.Root().Writer, "Outputs from %s to %s\n\n",
				start.Format(time.RFC3339), end.Format(time.RFC3339))
			printReport(c.Root().Writer, correlate.BuildReport(asr, ocr, photos, window))
			return nil
		},
	}
}

func printReport(w io.Writer, r *correlate.Report) {
	fmt.Fprintf(w, "Correlation window: %s\n", r.Window)
	fmt.Fprintf(w, "Photos: %d\n", r.PhotoCount)

	for _, kind := range []model.OutputKind{model.OutputKindASR, model.OutputKindOCR} {
		fmt.Fprintf(w, "%s: %d events, %.0f%% correlated",
			kind, r.EventCount[kind], r.CorrelationRate[kind]*100)

		timing := r.Timing[kind]
		if mean, ok := timing.MeanInterval(); ok {
			fmt.Fprintf(w, ", mean interval %s", mean.Round(time.Millisecond))
		}
		if freq, ok := timing.Frequency(); ok {
			fmt.Fprintf(w, ", %.2f events/s", freq)
		}
		fmt.Fprintln(w)
	}

	if mean, ok := r.PhotoTiming.MeanInterval(); ok {
		fmt.Fprintf(w, "photo cadence: mean interval %s\n", mean.Round(time.Millisecond))
	}
}

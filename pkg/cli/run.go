package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// captureEvent is one line of a capture log: a timestamped audio or photo
// frame recorded by the glasses firmware.
type captureEvent struct {
	Type string    `json:"type"` // "audio" or "photo"
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

func runCommand() *cli.Command {
	var (
		cfg      config
		input    string
		realtime bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSONL capture log to replay",
			Sources:     cli.EnvVars("GLASSWING_INPUT"),
			Destination: &input,
			Required:    true,
		},
		&cli.BoolFlag{
			Name:        "realtime",
			Usage:       "Honor the recorded inter-event gaps instead of replaying as fast as possible",
			Destination: &realtime,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)
	flags = append(flags, embedderFlags(&cfg)...)

	return &cli.Command{
		Name:  "run",
		Usage: "Replay a capture log through the correlation pipeline",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			events, err := loadCaptureLog(input)
			if err != nil {
				return err
			}

			outputs, index, closeStores, err := cfg.newStores(ctx)
			if err != nil {
				return err
			}
			defer closeStores()

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			pipeline, err := cfg.newPipeline(ctx, outputs, index, embedder)
			if err != nil {
				return err
			}

			audio := make(chan []byte)
			photo := make(chan []byte)
			if err := pipeline.Enable(ctx, audio, photo); err != nil {
				return err
			}

			for i, ev := range events {
				if realtime && i > 0 {
					gap := ev.At.Sub(events[i-1].At)
					if gap > 0 {
						time.Sleep(gap)
					}
				}

				switch ev.Type {
				case "audio":
					audio <- []byte(ev.Text)
				case "photo":
					photo <- []byte(ev.Text)
				default:
					return goerr.New("unknown event type",
						goerr.V("type", ev.Type), goerr.V("line", i+1))
				}
			}
			close(audio)
			close(photo)

			report, err := pipeline.Disable(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Replayed %d events\n\n", len(events))
			printReport(c.Root().Writer, report)

			count, err := outputs.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "\nStored outputs: %d\n", count)
			return nil
		},
	}
}

func loadCaptureLog(path string) ([]captureEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open capture log", goerr.V("path", path))
	}
	defer f.Close()

	var events []captureEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var ev captureEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, goerr.Wrap(err, "failed to parse capture event", goerr.V("line", line))
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read capture log", goerr.V("path", path))
	}

	return events, nil
}

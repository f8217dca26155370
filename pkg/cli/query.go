package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func queryCommand() *cli.Command {
	var (
		cfg       config
		limit     int64
		threshold float64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of hits per query",
			Value:       5,
			Sources:     cli.EnvVars("GLASSWING_QUERY_LIMIT"),
			Destination: &limit,
		},
		&cli.FloatFlag{
			Name:        "threshold",
			Aliases:     []string{"t"},
			Usage:       "Minimum cosine similarity for a hit",
			Value:       memory.DefaultSearchThreshold,
			Sources:     cli.EnvVars("GLASSWING_QUERY_THRESHOLD"),
			Destination: &threshold,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, embedderFlags(&cfg)...)

	return &cli.Command{
		Name:  "query",
		Usage: "Interactive similarity search over stored memories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			_, index, closeStores, err := cfg.newStores(ctx)
			if err != nil {
				return err
			}
			defer closeStores()

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("query> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintln(w, "Type a query to search memories, '/store <text>' to add one, 'exit' to quit.")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				line = strings.TrimSpace(line)
				switch {
				case line == "":
					continue
				case line == "exit":
					return nil
				case strings.HasPrefix(line, "/store "):
					text := strings.TrimSpace(strings.TrimPrefix(line, "/store "))
					if text == "" {
						continue
					}
					vector, err := embedder.Embed(ctx, text)
					if err != nil {
						return goerr.Wrap(err, "failed to embed text")
					}
					id, err := index.Insert(ctx, text, vector, map[string]string{"source": "query"})
					if err != nil {
						return goerr.Wrap(err, "failed to store memory")
					}
					fmt.Fprintf(w, "Stored memory %d\n", id)

				default:
					sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
					sp.Suffix = " searching..."
					sp.Start()

					vector, err := embedder.Embed(ctx, line)
					if err != nil {
						sp.Stop()
						return goerr.Wrap(err, "failed to embed query")
					}
					hits, err := index.Search(ctx, vector, int(limit), threshold)
					sp.Stop()
					if err != nil {
						return goerr.Wrap(err, "search failed")
					}

					if len(hits) == 0 {
						fmt.Fprintln(w, "No matches.")
						continue
					}
					for i, hit := range hits {
						fmt.Fprintf(w, "%d. [%.3f] %s\n", i+1, hit.Score, hit.Record.Text)
					}
				}
			}

			return nil
		},
	}
}

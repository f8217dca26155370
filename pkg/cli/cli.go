// Package cli wires the glasswing commands: replaying capture logs
// through the pipeline, querying the memory index, summarizing
// correlation over a stored range, and serving the stores over MCP.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "glasswing",
		Usage: "Temporal correlation and memory retrieval for wearable capture streams",
		Commands: []*cli.Command{
			runCommand(),
			queryCommand(),
			reportCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

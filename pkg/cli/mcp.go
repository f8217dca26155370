package cli

import (
	"context"

	"github.com/glasswing-io/glasswing/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, embedderFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve memory search and storage over MCP stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
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

			return mcp.NewServer(outputs, index, embedder).Run(ctx)
		},
	}
}

package cli

import (
	"context"
	"os"
	"time"

	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/policy"
	"github.com/glasswing-io/glasswing/pkg/repository/firestore"
	"github.com/glasswing-io/glasswing/pkg/repository/memory"
	"github.com/glasswing-io/glasswing/pkg/service/mcp"
	"github.com/glasswing-io/glasswing/pkg/tool"
	"github.com/glasswing-io/glasswing/pkg/tool/memorytool"
	"github.com/glasswing-io/glasswing/pkg/usecase/agent"
	"github.com/glasswing-io/glasswing/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values shared across commands. Flags win
// over the optional YAML config file, which wins over built-in defaults.
type config struct {
	configPath string
	logLevel   string

	// Repository; empty project means in-memory stores
	project  string
	database string

	// Adapters
	geminiProject  string
	geminiLocation string
	bucket         string

	// Pipeline
	window      time.Duration
	dimension   int64
	photoBuffer int64
	policyDir   string
	mcpConfig   string
}

// fileConfig is the YAML shape of --config.
type fileConfig struct {
	LogLevel    string `yaml:"log_level"`
	Window      string `yaml:"window"`
	Dimension   int64  `yaml:"dimension"`
	PhotoBuffer int64  `yaml:"photo_buffer"`
	PolicyDir   string `yaml:"policy_dir"`
	MCPConfig   string `yaml:"mcp_config"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("GLASSWING_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("GLASSWING_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore persistence (empty keeps stores in memory)",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.DurationFlag{
			Name:        "window",
			Aliases:     []string{"w"},
			Usage:       "Temporal correlation window",
			Sources:     cli.EnvVars("GLASSWING_WINDOW"),
			Destination: &cfg.window,
		},
		&cli.IntFlag{
			Name:        "dimension",
			Usage:       "Embedding vector dimension",
			Sources:     cli.EnvVars("GLASSWING_DIMENSION"),
			Destination: &cfg.dimension,
		},
	}
}

// pipelineFlags returns flags only the capture pipeline needs.
func pipelineFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "photo-buffer",
			Usage:       "Capacity of the recent-photo ring",
			Sources:     cli.EnvVars("GLASSWING_PHOTO_BUFFER"),
			Destination: &cfg.photoBuffer,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego capture policies",
			Sources:     cli.EnvVars("GLASSWING_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for correlated frame archive",
			Sources:     cli.EnvVars("GLASSWING_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "mcp-config",
			Usage:       "Path to YAML config listing external MCP tool servers",
			Sources:     cli.EnvVars("GLASSWING_MCP_CONFIG"),
			Destination: &cfg.mcpConfig,
		},
	}
}

// embedderFlags returns flags for the embedding backend.
func embedderFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings (empty uses the local embedder)",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// setup loads the config file, fills unset fields and installs the
// logger into the returned context. Every command action calls it first.
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	if cfg.configPath != "" {
		data, err := os.ReadFile(cfg.configPath)
		if err != nil {
			return ctx, goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return ctx, goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
		}

		if cfg.logLevel == "" {
			cfg.logLevel = fc.LogLevel
		}
		if cfg.window == 0 && fc.Window != "" {
			w, err := time.ParseDuration(fc.Window)
			if err != nil {
				return ctx, goerr.Wrap(err, "invalid window in config file", goerr.V("window", fc.Window))
			}
			cfg.window = w
		}
		if cfg.dimension == 0 {
			cfg.dimension = fc.Dimension
		}
		if cfg.photoBuffer == 0 {
			cfg.photoBuffer = fc.PhotoBuffer
		}
		if cfg.policyDir == "" {
			cfg.policyDir = fc.PolicyDir
		}
		if cfg.mcpConfig == "" {
			cfg.mcpConfig = fc.MCPConfig
		}
	}

	if cfg.logLevel == "" {
		cfg.logLevel = "info"
	}
	if cfg.dimension == 0 {
		cfg.dimension = memory.DefaultDimension
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

// newStores creates the output store and memory index: Firestore when a
// project is configured, in-memory otherwise. The returned closer is a
// no-op for the in-memory pair.
func (cfg *config) newStores(ctx context.Context) (interfaces.OutputStore, interfaces.MemoryIndex, func() error, error) {
	if cfg.project == "" {
		return memory.NewOutputStore(), memory.NewMemoryIndex(int(cfg.dimension)), func() error { return nil }, nil
	}

	if cfg.database == "" {
		return nil, nil, nil, goerr.New("database is required")
	}

	client, err := firestore.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return client.Outputs(), client.Memories(int(cfg.dimension)), client.Close, nil
}

// newEmbedder creates the Gemini embedder when configured, otherwise the
// deterministic local embedder.
func (cfg *config) newEmbedder(ctx context.Context) (adapter.Embedder, error) {
	if cfg.geminiProject == "" {
		return adapter.NewLocalEmbedder(int(cfg.dimension)), nil
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	client, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithDimension(int(cfg.dimension)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return client, nil
}

// newRegistry assembles the memory tool set, extended by any bridged
// external MCP tools.
func (cfg *config) newRegistry(ctx context.Context, outputs interfaces.OutputStore, index interfaces.MemoryIndex, embedder adapter.Embedder) (*tool.Registry, error) {
	tools := memorytool.All(memorytool.Deps{
		Outputs:  outputs,
		Index:    index,
		Embedder: embedder,
	})

	bridge, err := mcp.LoadBridge(ctx, cfg.mcpConfig)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load mcp bridge")
	}
	if bridge != nil {
		tools = append(tools, bridge)
	}

	return tool.New(tools...), nil
}

// newPipeline builds a ready-to-enable pipeline from the config.
func (cfg *config) newPipeline(ctx context.Context, outputs interfaces.OutputStore, index interfaces.MemoryIndex, embedder adapter.Embedder) (*agent.Pipeline, error) {
	registry, err := cfg.newRegistry(ctx, outputs, index, embedder)
	if err != nil {
		return nil, err
	}

	gate, err := policy.New(ctx, cfg.policyDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load capture policy")
	}

	opts := []agent.Option{
		agent.WithRegistry(registry),
		agent.WithGate(gate),
	}
	if cfg.window > 0 {
		opts = append(opts, agent.WithWindow(cfg.window))
	}
	if cfg.photoBuffer > 0 {
		opts = append(opts, agent.WithPhotoBuffer(int(cfg.photoBuffer)))
	}

	if cfg.bucket != "" {
		archive, err := adapter.NewArchive(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create frame archive")
		}
		opts = append(opts, agent.WithArchive(archive))
	}

	return agent.New(outputs, index, adapter.NewLocalRecognizer(), embedder, opts...), nil
}

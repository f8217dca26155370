package mcp

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/glasswing-io/glasswing/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"
	"gopkg.in/yaml.v3"
)

// BridgeConfig is the YAML file listing external MCP servers whose tools
// should be offered to the assistant alongside the built-in memory tools.
type BridgeConfig struct {
	Servers []ServerConfig `yaml:"servers"`
}

type ServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"` // "stdio" or "http"
	Command   []string          `yaml:"command"`
	URL       string            `yaml:"url"`
	Env       map[string]string `yaml:"env"`
}

// Bridge connects to external MCP servers and exposes their tools through
// the agent's tool registry. It satisfies tool.Tool.
type Bridge struct {
	sessions map[string]*mcp.ClientSession
	tools    []*bridgedTool
}

type bridgedTool struct {
	serverName string
	name       string
	decl       *genai.FunctionDeclaration
}

// LoadBridge reads the bridge config and connects to every listed server.
// A missing path yields a nil bridge; individual connection failures are
// logged and skipped so one broken server does not take down the session.
func LoadBridge(ctx context.Context, configPath string) (*Bridge, error) {
	if configPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read mcp config", goerr.V("path", configPath))
	}

	var cfg BridgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse mcp config", goerr.V("path", configPath))
	}
	if len(cfg.Servers) == 0 {
		return nil, nil
	}

	logger := logging.From(ctx)
	bridge := &Bridge{sessions: make(map[string]*mcp.ClientSession)}

	for _, sc := range cfg.Servers {
		if err := bridge.connect(ctx, sc); err != nil {
			logger.Warn("skipping mcp server", "server", sc.Name, "error", err)
			continue
		}
		logger.Info("connected to mcp server", "server", sc.Name)
	}

	if len(bridge.tools) == 0 {
		bridge.Close()
		return nil, nil
	}
	return bridge, nil
}

func (b *Bridge) connect(ctx context.Context, sc ServerConfig) error {
	transport, err := newTransport(sc)
	if err != nil {
		return err
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "glasswing",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to connect")
	}

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return goerr.Wrap(err, "failed to list tools")
	}

	for _, t := range listed.Tools {
		decl, err := toFunctionDeclaration(t)
		if err != nil {
			_ = session.Close()
			return goerr.Wrap(err, "failed to convert tool", goerr.V("tool", t.Name))
		}
		b.tools = append(b.tools, &bridgedTool{
			serverName: sc.Name,
			name:       t.Name,
			decl:       decl,
		})
	}

	b.sessions[sc.Name] = session
	return nil
}

func newTransport(sc ServerConfig) (mcp.Transport, error) {
	switch sc.Transport {
	case "stdio":
		if len(sc.Command) == 0 {
			return nil, goerr.New("command is required for stdio transport")
		}
		cmd := exec.Command(sc.Command[0], sc.Command[1:]...)
		for k, v := range sc.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcp.CommandTransport{Command: cmd}, nil

	case "http":
		if sc.URL == "" {
			return nil, goerr.New("url is required for http transport")
		}
		return &mcp.StreamableClientTransport{Endpoint: sc.URL}, nil

	default:
		return nil, goerr.New("unsupported transport", goerr.V("transport", sc.Transport))
	}
}

// Spec returns the function declarations of all bridged tools.
func (b *Bridge) Spec() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, len(b.tools))
	for i, t := range b.tools {
		decls[i] = t.decl
	}
	return decls
}

// Execute forwards the call to the server that owns the tool.
func (b *Bridge) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	var target *bridgedTool
	for _, t := range b.tools {
		if t.name == fc.Name {
			target = t
			break
		}
	}
	if target == nil {
		return nil, goerr.New("bridged tool not found", goerr.V("name", fc.Name))
	}

	session := b.sessions[target.serverName]
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      target.name,
		Arguments: fc.Args,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call mcp tool",
			goerr.V("server", target.serverName), goerr.V("tool", target.name))
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode mcp result")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": string(encoded)},
	}, nil
}

// Close shuts down every server session.
func (b *Bridge) Close() error {
	for name, session := range b.sessions {
		if err := session.Close(); err != nil {
			return goerr.Wrap(err, "failed to close mcp session", goerr.V("server", name))
		}
	}
	b.sessions = make(map[string]*mcp.ClientSession)
	return nil
}

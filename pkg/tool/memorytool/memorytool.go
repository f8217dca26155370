// Package memorytool provides the fixed tool set the assistant can call
// against the on-device stores: store_memory, retrieve_memory,
// update_memory and analyze_content.
package memorytool

import (
	"github.com/glasswing-io/glasswing/pkg/adapter"
	"github.com/glasswing-io/glasswing/pkg/interfaces"
	"github.com/glasswing-io/glasswing/pkg/tool"
)

// Deps bundles the shared resources the memory tools operate on.
type Deps struct {
	Outputs  interfaces.OutputStore
	Index    interfaces.MemoryIndex
	Embedder adapter.Embedder
}

// All returns the complete memory tool set.
func All(deps Deps) []tool.Tool {
	return []tool.Tool{
		NewStoreMemory(deps),
		NewRetrieveMemory(deps),
		NewUpdateMemory(),
		NewAnalyzeContent(deps),
	}
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func argFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// Package tool defines the tool registry the chat loop executes model
// invocations against. Tool errors are returned as result text rather than
// Go errors so the model can read and react to them; only registry misuse
// surfaces as an error.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erg0nix/graft/internal/core"
)

type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, args map[string]any) string
}

type Registry struct {
	tools []Tool
	index map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Tool)}
}

func (registry *Registry) Add(tool Tool) {
	if _, exists := registry.index[tool.Name()]; exists {
		return
	}
	registry.tools = append(registry.tools, tool)
	registry.index[tool.Name()] = tool
}

// Execute runs the named tool with the invocation's raw JSON input. An
// unknown tool or undecodable input is reported in the result text, the
// same channel tool failures use.
func (registry *Registry) Execute(ctx context.Context, name string, input json.RawMessage) string {
	tool, ok := registry.index[name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	args := map[string]any{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return fmt.Sprintf("Error: invalid tool input: %v", err)
		}
	}

	return tool.Execute(ctx, args)
}

// Definitions returns the schemas advertised to the model, in registration
// order.
func (registry *Registry) Definitions() []core.ToolDef {
	definitions := make([]core.ToolDef, 0, len(registry.tools))
	for _, tool := range registry.tools {
		definitions = append(definitions, core.ToolDef{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return definitions
}

func getStringArg(key string, args map[string]any) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}

	stringValue, ok := value.(string)
	return stringValue, ok
}

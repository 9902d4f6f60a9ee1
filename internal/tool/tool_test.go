package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) InputSchema() map[string]any {
	return map[string]any{"type": "object"}
}
func (echoTool) Execute(_ context.Context, args map[string]any) string {
	text, _ := getStringArg("text", args)
	return text
}

func TestRegistryExecute(t *testing.T) {
	registry := NewRegistry()
	registry.Add(echoTool{})

	tests := []struct {
		name     string
		tool     string
		input    string
		expected string
	}{
		{
			name:     "known tool",
			tool:     "echo",
			input:    `{"text": "hello"}`,
			expected: "hello",
		},
		{
			name:     "unknown tool reported as result text",
			tool:     "vanish",
			input:    `{}`,
			expected: `Error: unknown tool "vanish"`,
		},
		{
			name:     "invalid input reported as result text",
			tool:     "echo",
			input:    `{broken`,
			expected: "Error: invalid tool input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.Execute(context.Background(), tt.tool, json.RawMessage(tt.input))
			if !strings.HasPrefix(got, tt.expected) {
				t.Errorf("expected prefix %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRegistryAddDedupes(t *testing.T) {
	registry := NewRegistry()
	registry.Add(echoTool{})
	registry.Add(echoTool{})

	if defs := registry.Definitions(); len(defs) != 1 {
		t.Errorf("expected 1 definition, got %d", len(defs))
	}
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	registry := NewRegistry()
	for _, tool := range NewFileTools(t.TempDir(), 0) {
		registry.Add(tool)
	}

	defs := registry.Definitions()
	expected := []string{"list_dir", "read_file", "write_file"}
	if len(defs) != len(expected) {
		t.Fatalf("expected %d definitions, got %d", len(expected), len(defs))
	}
	for i, name := range expected {
		if defs[i].Name != name {
			t.Errorf("definition %d: expected %q, got %q", i, name, defs[i].Name)
		}
	}
}

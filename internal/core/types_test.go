package core

import (
	"encoding/json"
	"testing"
)

func TestBlockValidate(t *testing.T) {
	tests := []struct {
		name    string
		block   Block
		wantErr bool
	}{
		{
			name:  "valid text",
			block: TextBlock("hello"),
		},
		{
			name:  "valid thinking",
			block: ThinkingBlock("reasoning", "sig"),
		},
		{
			name:  "thinking without signature",
			block: Block{Type: BlockThinking, Thinking: "reasoning"},
		},
		{
			name:  "valid tool use",
			block: ToolUseBlock("toolu_1", "read_file", json.RawMessage(`{"path":"a.txt"}`)),
		},
		{
			name:    "tool use without id",
			block:   Block{Type: BlockToolUse, Name: "read_file"},
			wantErr: true,
		},
		{
			name:    "tool use without name",
			block:   Block{Type: BlockToolUse, ID: "toolu_1"},
			wantErr: true,
		},
		{
			name:  "valid tool result",
			block: ToolResultBlock("toolu_1", "ok", false),
		},
		{
			name:    "tool result without tool_use_id",
			block:   Block{Type: BlockToolResult, Content: json.RawMessage(`"ok"`)},
			wantErr: true,
		},
		{
			name:    "missing type",
			block:   Block{Text: "hello"},
			wantErr: true,
		},
		{
			name:  "unknown type passes through",
			block: Block{Type: "server_tool_use", ID: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestBlockRoundTrip(t *testing.T) {
	original := Turn{
		Role: RoleAssistant,
		Blocks: []Block{
			ThinkingBlock("let me check", "opaque-signature-bytes"),
			TextBlock("checking now"),
			ToolUseBlock("toolu_1", "read_file", json.RawMessage(`{"path":"a.txt","nested":{"deep":[1,2,3]}}`)),
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Turn
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !original.Equal(decoded) {
		t.Errorf("turn changed across round trip:\n  before: %s\n  after:  %s", data, mustMarshal(t, decoded))
	}

	if decoded.Blocks[0].Signature != "opaque-signature-bytes" {
		t.Errorf("signature not preserved, got %q", decoded.Blocks[0].Signature)
	}
}

func TestResultText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "string content decoded",
			content:  `"file written"`,
			expected: "file written",
		},
		{
			name:     "structured content returned raw",
			content:  `[{"type":"text","text":"x"}]`,
			expected: `[{"type":"text","text":"x"}]`,
		},
		{
			name:     "empty",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Block{Type: BlockToolResult, ToolUseID: "t1", Content: json.RawMessage(tt.content)}
			if got := block.ResultText(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTurnEqualIgnoresCacheMarker(t *testing.T) {
	a := UserTurn("hello")
	b := UserTurn("hello")
	b.CacheMarker = true

	if !a.Equal(b) {
		t.Errorf("cache marker should not affect equality")
	}
}

func TestCacheMarkerNotSerialized(t *testing.T) {
	turn := UserTurn("hello")
	turn.CacheMarker = true

	data, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for key := range decoded {
		if key != "role" && key != "content" {
			t.Errorf("unexpected serialized field %q", key)
		}
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

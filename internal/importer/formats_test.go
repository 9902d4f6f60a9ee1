package importer

import (
	"errors"
	"testing"

	"github.com/erg0nix/graft/internal/core"
)

func TestImportRawMessageArray(t *testing.T) {
	data := []byte(`[
		{"role": "user", "content": "hello"},
		{"role": "assistant", "content": [{"type": "text", "text": "hi"}]}
	]`)

	transcript, err := Import(data, DefaultOptions())
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if transcript.Name != "imported" {
		t.Errorf("expected default name, got %q", transcript.Name)
	}
	if len(transcript.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(transcript.Turns))
	}
	if transcript.Turns[0].Role != core.RoleUser || transcript.Turns[0].TextContent() != "hello" {
		t.Errorf("string content not decoded into a text block")
	}
	if transcript.Turns[1].Role != core.RoleAssistant || transcript.Turns[1].TextContent() != "hi" {
		t.Errorf("block array content not decoded")
	}
}

func TestImportChatMessagesEnvelope(t *testing.T) {
	data := []byte(`{
		"name": "branch-4",
		"model": "some-model",
		"chat_messages": [
			{"sender": "human", "content": [{"type": "text", "text": "question"}]},
			{"sender": "system_hint", "content": [{"type": "text", "text": "skipped"}]},
			{"sender": "assistant", "content": [{"type": "text", "text": "answer"}]}
		]
	}`)

	transcript, err := Import(data, DefaultOptions())
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if transcript.Name != "branch-4" {
		t.Errorf("expected name branch-4, got %q", transcript.Name)
	}
	if transcript.Model != "some-model" {
		t.Errorf("expected model carried over, got %q", transcript.Model)
	}
	if len(transcript.Turns) != 2 {
		t.Fatalf("expected unknown sender skipped, got %d turns", len(transcript.Turns))
	}
}

func TestImportMessagesEnvelopeWithMetadata(t *testing.T) {
	data := []byte(`{
		"metadata": {"source_name": "session-7", "source_model": "model-x"},
		"messages": [
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": [{"type": "text", "text": "hi"}]}
		]
	}`)

	transcript, err := Import(data, DefaultOptions())
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if transcript.Name != "session-7" {
		t.Errorf("expected metadata name, got %q", transcript.Name)
	}
	if transcript.Model != "model-x" {
		t.Errorf("expected metadata model, got %q", transcript.Model)
	}
}

func TestImportUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "plain text, not a transcript"},
		{name: "object without messages", data: `{"foo": "bar"}`},
		{name: "array of scalars", data: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data), DefaultOptions())
			if !errors.Is(err, ErrUnrecognizedFormat) {
				t.Errorf("expected ErrUnrecognizedFormat, got %v", err)
			}
		})
	}
}

func TestImportRejectsMalformedBlocks(t *testing.T) {
	data := []byte(`[
		{"role": "assistant", "content": [{"type": "tool_use", "name": "shell"}]}
	]`)

	_, err := Import(data, DefaultOptions())
	if err == nil {
		t.Fatalf("expected malformed block to fail import")
	}
}

func TestImportAllOrNothing(t *testing.T) {
	// Invocation B has no result anywhere mid-transcript; the whole import
	// fails rather than emitting the turns before the failure.
	data := []byte(`[
		{"role": "user", "content": "go"},
		{"role": "assistant", "content": [
			{"type": "tool_use", "id": "A", "name": "shell", "input": {}},
			{"type": "tool_use", "id": "B", "name": "shell", "input": {}}
		]},
		{"role": "user", "content": [
			{"type": "tool_result", "tool_use_id": "A", "content": "ok"}
		]},
		{"role": "assistant", "content": [{"type": "text", "text": "done"}]}
	]`)

	transcript, err := Import(data, DefaultOptions())
	if err == nil {
		t.Fatalf("expected import failure, got %d turns", len(transcript.Turns))
	}

	var missing *MissingResultError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingResultError, got %v", err)
	}
	if missing.ToolUseID != "B" {
		t.Errorf("expected missing result for B, got %q", missing.ToolUseID)
	}
}

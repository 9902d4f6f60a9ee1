// Package core holds the shared conversation types: roles, content blocks,
// turns, and tool definitions. Everything here is plain data; behavior that
// mutates or persists conversations lives in the conversation and store
// packages.
package core

import (
	"bytes"
	"encoding/json"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// Block is one tagged content variant inside a turn. Which fields are
// meaningful depends on Type; Validate reports blocks whose required fields
// are missing. The JSON field names match the completion API wire shape, so
// blocks serialize losslessly in both directions.
//
// Signature is an opaque authentication token issued by the API alongside
// thinking content. It is carried through every transformation unmodified;
// the API rejects thinking blocks whose signature was altered.
type Block struct {
	Type BlockType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// thinking
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result; Content is either a JSON string or a structured value,
	// kept raw so both forms survive a round trip
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// Turn is one role's contribution to a conversation: an ordered list of
// content blocks. CacheMarker flags the boundary after this turn as a prompt
// cache breakpoint; it is recomputed on every send and never persisted.
type Turn struct {
	Role        Role    `json:"role"`
	Blocks      []Block `json:"content"`
	CacheMarker bool    `json:"-"`
}

// ToolDef describes a tool advertised to the model.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Usage tracks token consumption reported by the API for a single request.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

func ThinkingBlock(thinking, signature string) Block {
	return Block{Type: BlockThinking, Thinking: thinking, Signature: signature}
}

func ToolUseBlock(id, name string, input json.RawMessage) Block {
	return Block{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

func ToolResultBlock(toolUseID, content string, isError bool) Block {
	raw, _ := json.Marshal(content)
	return Block{Type: BlockToolResult, ToolUseID: toolUseID, Content: raw, IsError: isError}
}

// UserTurn wraps plain text as a single-block user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Blocks: []Block{TextBlock(text)}}
}

func AssistantTurn(blocks ...Block) Turn {
	return Turn{Role: RoleAssistant, Blocks: blocks}
}

// Validate checks structural well-formedness: the required fields for the
// block's type are present. Block content is never validated here; tool
// input schemas and thinking signatures are opaque at this layer.
func (b Block) Validate() error {
	switch b.Type {
	case BlockText:
		return nil
	case BlockThinking:
		return nil
	case BlockToolUse:
		if b.ID == "" {
			return &MalformedBlockError{Type: b.Type, Field: "id"}
		}
		if b.Name == "" {
			return &MalformedBlockError{Type: b.Type, Field: "name"}
		}
		return nil
	case BlockToolResult:
		if b.ToolUseID == "" {
			return &MalformedBlockError{Type: b.Type, Field: "tool_use_id"}
		}
		return nil
	case "":
		return &MalformedBlockError{Type: b.Type, Field: "type"}
	default:
		// Unknown block types pass through untouched so newer API block
		// kinds load without error.
		return nil
	}
}

// ResultText renders a tool_result's content as plain text. String content
// decodes directly; structured content is returned as its raw JSON.
func (b Block) ResultText() string {
	if len(b.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Content, &s); err == nil {
		return s
	}
	return string(b.Content)
}

// Equal compares two blocks field-for-field. Raw JSON fields compare by
// bytes, so Input and Content must round-trip exactly.
func (b Block) Equal(other Block) bool {
	return b.Type == other.Type &&
		b.Text == other.Text &&
		b.Thinking == other.Thinking &&
		b.Signature == other.Signature &&
		b.ID == other.ID &&
		b.Name == other.Name &&
		bytes.Equal(b.Input, other.Input) &&
		b.ToolUseID == other.ToolUseID &&
		bytes.Equal(b.Content, other.Content) &&
		b.IsError == other.IsError
}

// Equal compares role and blocks. CacheMarker is transient state and does
// not participate in equality.
func (t Turn) Equal(other Turn) bool {
	if t.Role != other.Role || len(t.Blocks) != len(other.Blocks) {
		return false
	}
	for i := range t.Blocks {
		if !t.Blocks[i].Equal(other.Blocks[i]) {
			return false
		}
	}
	return true
}

// HasToolUse reports whether any block in the turn is a tool invocation.
func (t Turn) HasToolUse() bool {
	for _, b := range t.Blocks {
		if b.Type == BlockToolUse {
			return true
		}
	}
	return false
}

// HasText reports whether the turn carries real text content, as opposed to
// consisting solely of tool results or reasoning.
func (t Turn) HasText() bool {
	for _, b := range t.Blocks {
		if b.Type == BlockText && b.Text != "" {
			return true
		}
	}
	return false
}

// TextContent concatenates the turn's text blocks.
func (t Turn) TextContent() string {
	var buf bytes.Buffer
	for _, b := range t.Blocks {
		if b.Type != BlockText {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(b.Text)
	}
	return buf.String()
}

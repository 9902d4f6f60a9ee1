package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
)

// YAMLExporter writes a readable document view. Raw JSON fields are
// rendered as strings so the output stays human-friendly; use the json
// format for lossless interchange.
type YAMLExporter struct{}

type yamlConversation struct {
	Name    string     `yaml:"name"`
	Model   string     `yaml:"model"`
	System  string     `yaml:"system_prompt,omitempty"`
	Created string     `yaml:"created"`
	Turns   []yamlTurn `yaml:"turns"`
}

type yamlTurn struct {
	Role   string      `yaml:"role"`
	Blocks []yamlBlock `yaml:"blocks"`
}

type yamlBlock struct {
	Type     string `yaml:"type"`
	Text     string `yaml:"text,omitempty"`
	Thinking string `yaml:"thinking,omitempty"`
	Tool     string `yaml:"tool,omitempty"`
	Input    string `yaml:"input,omitempty"`
	Result   string `yaml:"result,omitempty"`
	IsError  bool   `yaml:"is_error,omitempty"`
}

func (e *YAMLExporter) Export(conv *conversation.Conversation, w io.Writer, opts Options) error {
	doc := yamlConversation{
		Name:    conv.Name,
		Model:   conv.Model,
		System:  conv.SystemPrompt,
		Created: conv.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	for _, turn := range conv.Turns {
		out := yamlTurn{Role: string(turn.Role)}
		for _, block := range turn.Blocks {
			converted, keep := convertBlock(block, opts)
			if keep {
				out.Blocks = append(out.Blocks, converted)
			}
		}
		if len(out.Blocks) > 0 {
			doc.Turns = append(doc.Turns, out)
		}
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(doc)
}

func (e *YAMLExporter) Extension() string { return "yaml" }

func convertBlock(block core.Block, opts Options) (yamlBlock, bool) {
	switch block.Type {
	case core.BlockText:
		return yamlBlock{Type: "text", Text: block.Text}, true
	case core.BlockThinking:
		if !opts.IncludeThinking {
			return yamlBlock{}, false
		}
		return yamlBlock{Type: "thinking", Thinking: block.Thinking}, true
	case core.BlockToolUse:
		if !opts.IncludeToolUse {
			return yamlBlock{}, false
		}
		return yamlBlock{Type: "tool_use", Tool: block.Name, Input: string(block.Input)}, true
	case core.BlockToolResult:
		if !opts.IncludeToolUse {
			return yamlBlock{}, false
		}
		return yamlBlock{Type: "tool_result", Result: block.ResultText(), IsError: block.IsError}, true
	default:
		return yamlBlock{}, false
	}
}

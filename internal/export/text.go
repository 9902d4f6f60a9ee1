package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
)

// TextExporter writes a plain transcript with Human:/Assistant: speaker
// markers, the same shape the compression parser reads back.
type TextExporter struct{}

func (e *TextExporter) Export(conv *conversation.Conversation, w io.Writer, opts Options) error {
	if conv.SystemPrompt != "" {
		if _, err := fmt.Fprintf(w, "System: %s\n\n", conv.SystemPrompt); err != nil {
			return err
		}
	}

	for _, turn := range conv.Turns {
		body := renderTurnText(turn, opts)
		if body == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n\n", speakerLabel(turn.Role), body); err != nil {
			return err
		}
	}

	return nil
}

func (e *TextExporter) Extension() string { return "txt" }

func speakerLabel(role core.Role) string {
	if role == core.RoleAssistant {
		return "Assistant"
	}
	return "Human"
}

func renderTurnText(turn core.Turn, opts Options) string {
	var parts []string
	for _, block := range turn.Blocks {
		switch block.Type {
		case core.BlockText:
			parts = append(parts, block.Text)
		case core.BlockThinking:
			if opts.IncludeThinking {
				parts = append(parts, "[thinking]\n"+block.Thinking)
			}
		case core.BlockToolUse:
			if opts.IncludeToolUse {
				parts = append(parts, fmt.Sprintf("[tool: %s] %s", block.Name, string(block.Input)))
			}
		case core.BlockToolResult:
			if opts.IncludeToolUse {
				parts = append(parts, "[tool result]\n"+block.ResultText())
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

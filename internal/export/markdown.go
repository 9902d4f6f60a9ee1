package export

import (
	"fmt"
	"io"

	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
)

type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(conv *conversation.Conversation, w io.Writer, opts Options) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", conv.Name)
	_, _ = fmt.Fprintf(w, "**Model:** %s  \n", conv.Model)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "**Turns:** %d\n\n", len(conv.Turns))

	if conv.SystemPrompt != "" {
		_, _ = fmt.Fprintf(w, "**System prompt:**\n\n> %s\n\n", conv.SystemPrompt)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for _, turn := range conv.Turns {
		if err := writeTurnMarkdown(w, turn, opts); err != nil {
			return err
		}
	}

	return nil
}

func (e *MarkdownExporter) Extension() string { return "md" }

func writeTurnMarkdown(w io.Writer, turn core.Turn, opts Options) error {
	wrote := false
	for _, block := range turn.Blocks {
		switch block.Type {
		case core.BlockText:
			if _, err := fmt.Fprintf(w, "**%s:**\n\n%s\n\n", speakerLabel(turn.Role), block.Text); err != nil {
				return err
			}
			wrote = true
		case core.BlockThinking:
			if !opts.IncludeThinking {
				continue
			}
			if _, err := fmt.Fprintf(w, "<details><summary>Thinking</summary>\n\n%s\n\n</details>\n\n", block.Thinking); err != nil {
				return err
			}
			wrote = true
		case core.BlockToolUse:
			if !opts.IncludeToolUse {
				continue
			}
			if _, err := fmt.Fprintf(w, "**Tool call `%s`:**\n\n```json\n%s\n```\n\n", block.Name, string(block.Input)); err != nil {
				return err
			}
			wrote = true
		case core.BlockToolResult:
			if !opts.IncludeToolUse {
				continue
			}
			if _, err := fmt.Fprintf(w, "**Tool result:**\n\n```\n%s\n```\n\n", block.ResultText()); err != nil {
				return err
			}
			wrote = true
		}
	}

	if wrote {
		_, err := fmt.Fprintf(w, "---\n\n")
		return err
	}
	return nil
}

// Package export renders conversations into portable formats. Options
// control whether thinking and tool exchanges appear in the output; the
// json format always writes the full conversation so it can be re-imported
// without loss.
package export

import (
	"fmt"
	"io"

	"github.com/erg0nix/graft/internal/conversation"
)

type Options struct {
	IncludeThinking bool
	IncludeToolUse  bool
}

type Exporter interface {
	Export(conv *conversation.Conversation, w io.Writer, opts Options) error
	Extension() string
}

// NewExporter returns the exporter for format, one of "text", "md",
// "markdown", "json", or "yaml".
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "text", "txt":
		return &TextExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, md, json, yaml)", format)
	}
}

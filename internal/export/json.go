package export

import (
	"encoding/json"
	"io"

	"github.com/erg0nix/graft/internal/conversation"
)

// JSONExporter writes the conversation verbatim. Inclusion options do not
// apply; the output is the lossless interchange form.
type JSONExporter struct{}

func (e *JSONExporter) Export(conv *conversation.Conversation, w io.Writer, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(conv)
}

func (e *JSONExporter) Extension() string { return "json" }

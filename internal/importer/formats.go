package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erg0nix/graft/internal/core"
)

// Transcript is the outcome of an import: reconciled turns plus whatever
// identifying metadata the source carried.
type Transcript struct {
	Name  string
	Model string
	Turns []core.Turn
}

// ErrUnrecognizedFormat reports import data in none of the supported
// shapes.
var ErrUnrecognizedFormat = errors.New("unrecognized conversation format")

// envelope covers both object-shaped import formats. A socketteer export
// has chat_messages; an API-shape file has messages and optional metadata.
type envelope struct {
	Name         string            `json:"name"`
	Model        string            `json:"model"`
	ChatMessages []exportedMessage `json:"chat_messages"`
	Messages     []rawMessage      `json:"messages"`
	Metadata     *importMetadata   `json:"metadata"`
}

type importMetadata struct {
	SourceName  string `json:"source_name"`
	SourceModel string `json:"source_model"`
}

type exportedMessage struct {
	Sender  string       `json:"sender"`
	Content []core.Block `json:"content"`
}

// rawMessage is an API-shape message whose content may be a plain string or
// a block array.
type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// Import detects the input format, validates block structure, and
// reconciles the transcript into causally ordered turns.
func Import(data []byte, opts Options) (*Transcript, error) {
	transcript, err := detect(data)
	if err != nil {
		return nil, err
	}

	for i, turn := range transcript.Turns {
		for _, block := range turn.Blocks {
			if err := block.Validate(); err != nil {
				return nil, fmt.Errorf("turn %d: %w", i, err)
			}
		}
	}

	reconciled, err := Reconcile(transcript.Turns, opts)
	if err != nil {
		return nil, err
	}

	transcript.Turns = reconciled
	return transcript, nil
}

// detect sniffs the import shape. Supported: a socketteer export
// ({chat_messages: [{sender, content[]}]}), an API-shape object
// ({messages: [...]}, optionally with metadata), or a bare message array.
func detect(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var messages []rawMessage
		if err := json.Unmarshal(trimmed, &messages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
		}
		turns, err := fromRawMessages(messages)
		if err != nil {
			return nil, err
		}
		return &Transcript{Name: "imported", Turns: turns}, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	switch {
	case env.ChatMessages != nil:
		name := env.Name
		if name == "" {
			name = "imported"
		}
		return &Transcript{
			Name:  name,
			Model: env.Model,
			Turns: fromExportedMessages(env.ChatMessages),
		}, nil

	case env.Messages != nil:
		name := env.Name
		model := env.Model
		if env.Metadata != nil {
			if env.Metadata.SourceName != "" {
				name = env.Metadata.SourceName
			}
			if env.Metadata.SourceModel != "" {
				model = env.Metadata.SourceModel
			}
		}
		if name == "" {
			name = "imported"
		}
		turns, err := fromRawMessages(env.Messages)
		if err != nil {
			return nil, err
		}
		return &Transcript{Name: name, Model: model, Turns: turns}, nil

	default:
		return nil, ErrUnrecognizedFormat
	}
}

// fromExportedMessages maps socketteer senders onto API roles. Messages
// from unknown senders are skipped, matching the upstream export tool.
func fromExportedMessages(messages []exportedMessage) []core.Turn {
	var turns []core.Turn
	for _, msg := range messages {
		var role core.Role
		switch msg.Sender {
		case "human":
			role = core.RoleUser
		case "assistant":
			role = core.RoleAssistant
		default:
			continue
		}
		turns = append(turns, core.Turn{Role: role, Blocks: msg.Content})
	}
	return turns
}

func fromRawMessages(messages []rawMessage) ([]core.Turn, error) {
	var turns []core.Turn
	for i, msg := range messages {
		blocks, err := decodeContent(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		turns = append(turns, core.Turn{Role: core.Role(msg.Role), Blocks: blocks})
	}
	return turns, nil
}

// decodeContent accepts both content encodings the API allows: a plain
// string (one text block) or an array of typed blocks.
func decodeContent(raw json.RawMessage) ([]core.Block, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return []core.Block{core.TextBlock(text)}, nil
	}

	var blocks []core.Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("content is neither string nor block array: %w", err)
	}
	return blocks, nil
}

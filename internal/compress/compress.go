// Package compress parses model-authored condensed transcripts back into
// turns. The model is asked to rewrite prior history as a marker-delimited
// transcript ("User: ...", "Assistant: ..."); this package is the inverse
// of that request.
package compress

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erg0nix/graft/internal/core"
)

// CharsPerToken is the ratio used when sizing compression targets. It is
// deliberately independent of the conversation log's display estimate; the
// two may diverge and callers must not assume consistency.
const CharsPerToken = 4

// Markers must begin a line: the same strings quoted inside message content
// never split a turn.
var (
	userMarker      = regexp.MustCompile(`(?i)^(User|U\d+|Human|H\d*):\s*`)
	assistantMarker = regexp.MustCompile(`(?i)^(Assistant|A\d+|Claude|C\d*):\s*`)
)

// UnparsableTranscriptError reports condensed output with no recognized
// turn markers. A markerless transcript is never silently treated as a
// single turn; the compression has to be retried instead.
type UnparsableTranscriptError struct {
	Preview string
}

func (e *UnparsableTranscriptError) Error() string {
	return fmt.Sprintf("no turn markers found in compressed transcript (starts %q)", e.Preview)
}

// Parse splits a condensed transcript into turns at line-anchored role
// markers. Bracketed context lines before the first marker are skipped.
func Parse(content string) ([]core.Turn, error) {
	var turns []core.Turn
	var role core.Role
	var current []string

	flush := func() {
		if role == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			turns = append(turns, core.Turn{Role: role, Blocks: []core.Block{core.TextBlock(text)}})
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if m := userMarker.FindStringIndex(line); m != nil {
			flush()
			role = core.RoleUser
			current = []string{line[m[1]:]}
			continue
		}
		if m := assistantMarker.FindStringIndex(line); m != nil {
			flush()
			role = core.RoleAssistant
			current = []string{line[m[1]:]}
			continue
		}
		if role == "" {
			// Prelude before the first marker: tolerate [Context: ...]
			// style metadata lines, ignore everything else.
			continue
		}
		current = append(current, line)
	}
	flush()

	if len(turns) == 0 {
		return nil, &UnparsableTranscriptError{Preview: preview(content)}
	}

	return turns, nil
}

// EstimateTokens sizes text with the compression ratio.
func EstimateTokens(text string) int {
	return len(text) / CharsPerToken
}

// Instructions builds the prompt that asks the model to compress the
// conversation to roughly targetTokens, in the format Parse accepts.
func Instructions(targetTokens int) string {
	return fmt.Sprintf(`You're going to compress this conversation while preserving continuity.

Guidelines:
- Your own messages: high fidelity (your actual thoughts, phrasings, emphasis)
- User's messages: compress heavily - just enough to reconstruct conversational state
- Target: ~%d tokens
- Begin each turn with a "User:" or "Assistant:" marker at the start of a line
- Markers quoted inside a message body are ignored; only line-initial markers split turns

Output the compressed transcript now. Start with [Context: ...] if helpful.`, targetTokens)
}

func preview(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) > 60 {
		return trimmed[:60]
	}
	return trimmed
}

// Package conversation owns the mutable conversation state: an ordered,
// appendable sequence of turns plus metadata. A Conversation is passed
// explicitly through store and provider operations; there is no ambient
// current-conversation global.
package conversation

import (
	"time"

	"github.com/erg0nix/graft/internal/core"
)

// DefaultCharsPerToken is the character-to-token ratio used by
// TokenEstimate when the caller does not configure one. It is a coarse
// heuristic for conversational text, not a tokenizer; the compression
// package uses its own, different ratio and the two estimates must not be
// assumed consistent.
const DefaultCharsPerToken = 2

// Conversation is a named, persistable sequence of turns. Mutation happens
// only through Append and ReplaceTurns so UpdatedAt stays accurate.
type Conversation struct {
	Name         string
	Model        string
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Turns        []core.Turn
}

// New creates an empty conversation. The name may be empty until first save.
func New(name, model string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		Name:      name,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a turn at the end. Turn count is unbounded; callers that need
// a ceiling compress instead.
func (c *Conversation) Append(turn core.Turn) {
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now().UTC()
}

// DropLast removes and returns the final turn, used to roll back a user
// turn when the request that carried it failed.
func (c *Conversation) DropLast() (core.Turn, bool) {
	if len(c.Turns) == 0 {
		return core.Turn{}, false
	}
	last := c.Turns[len(c.Turns)-1]
	c.Turns = c.Turns[:len(c.Turns)-1]
	return last, true
}

// ReplaceTurns swaps the entire turn sequence, as compression does after a
// condensed transcript has been parsed.
func (c *Conversation) ReplaceTurns(turns []core.Turn) {
	c.Turns = turns
	c.UpdatedAt = time.Now().UTC()
}

// TokenEstimate approximates the conversation's token count by dividing the
// total character count of block text content by charsPerToken. Values <= 0
// fall back to DefaultCharsPerToken. This is an estimate for display and
// budgeting, never exact tokenization.
func (c *Conversation) TokenEstimate(charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	chars := 0
	for _, turn := range c.Turns {
		for _, block := range turn.Blocks {
			chars += len(block.Text)
			chars += len(block.Thinking)
			if block.Type == core.BlockToolResult {
				chars += len(block.ResultText())
			}
		}
	}
	return chars / charsPerToken
}

// Equal compares every persisted field, block ordering included. Timestamps
// compare with time.Equal so load(save(c)) equality survives monotonic
// clock stripping.
func (c *Conversation) Equal(other *Conversation) bool {
	if other == nil {
		return false
	}
	if c.Name != other.Name || c.Model != other.Model || c.SystemPrompt != other.SystemPrompt {
		return false
	}
	if !c.CreatedAt.Equal(other.CreatedAt) || !c.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if len(c.Turns) != len(other.Turns) {
		return false
	}
	for i := range c.Turns {
		if !c.Turns[i].Equal(other.Turns[i]) {
			return false
		}
	}
	return true
}

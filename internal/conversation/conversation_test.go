package conversation

import (
	"testing"
	"time"

	"github.com/erg0nix/graft/internal/core"
)

func TestAppendUpdatesModified(t *testing.T) {
	conv := New("test", "model-a")
	before := conv.UpdatedAt

	time.Sleep(time.Millisecond)
	conv.Append(core.UserTurn("hello"))

	if len(conv.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(conv.Turns))
	}
	if !conv.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt not advanced by Append")
	}
}

func TestDropLast(t *testing.T) {
	conv := New("test", "model-a")

	if _, ok := conv.DropLast(); ok {
		t.Errorf("DropLast on empty conversation should report false")
	}

	conv.Append(core.UserTurn("first"))
	conv.Append(core.UserTurn("second"))

	turn, ok := conv.DropLast()
	if !ok {
		t.Fatalf("expected a dropped turn")
	}
	if turn.TextContent() != "second" {
		t.Errorf("expected last turn dropped, got %q", turn.TextContent())
	}
	if len(conv.Turns) != 1 {
		t.Errorf("expected 1 remaining turn, got %d", len(conv.Turns))
	}
}

func TestTokenEstimate(t *testing.T) {
	conv := New("test", "model-a")
	conv.Append(core.UserTurn("aaaaaaaaaa"))                          // 10 chars
	conv.Append(core.AssistantTurn(core.TextBlock("bbbbbbbbbbbbbb"))) // 14 chars

	tests := []struct {
		name          string
		charsPerToken int
		expected      int
	}{
		{name: "ratio 2", charsPerToken: 2, expected: 12},
		{name: "ratio 4", charsPerToken: 4, expected: 6},
		{name: "zero falls back to default", charsPerToken: 0, expected: 24 / DefaultCharsPerToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conv.TokenEstimate(tt.charsPerToken); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestTokenEstimateCountsThinkingAndResults(t *testing.T) {
	conv := New("test", "model-a")
	conv.Append(core.AssistantTurn(core.ThinkingBlock("cccc", "sig")))
	conv.Append(core.Turn{Role: core.RoleUser, Blocks: []core.Block{
		core.ToolResultBlock("t1", "dddd", false),
	}})

	if got := conv.TokenEstimate(4); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestReplaceTurns(t *testing.T) {
	conv := New("test", "model-a")
	conv.Append(core.UserTurn("one"))
	conv.Append(core.AssistantTurn(core.TextBlock("two")))

	replacement := []core.Turn{core.UserTurn("condensed")}
	conv.ReplaceTurns(replacement)

	if len(conv.Turns) != 1 {
		t.Fatalf("expected 1 turn after replace, got %d", len(conv.Turns))
	}
	if conv.Turns[0].TextContent() != "condensed" {
		t.Errorf("expected replacement turns, got %q", conv.Turns[0].TextContent())
	}
}

func TestEqual(t *testing.T) {
	a := New("test", "model-a")
	a.Append(core.UserTurn("hello"))

	b := &Conversation{
		Name:      a.Name,
		Model:     a.Model,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Turns:     []core.Turn{core.UserTurn("hello")},
	}

	if !a.Equal(b) {
		t.Errorf("expected conversations equal")
	}

	b.Turns[0].CacheMarker = true
	if !a.Equal(b) {
		t.Errorf("cache marker should not affect equality")
	}

	b.Model = "model-b"
	if a.Equal(b) {
		t.Errorf("expected model change to break equality")
	}
}

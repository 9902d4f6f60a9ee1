package importer

import "fmt"

// UnmatchedResultError reports a tool result whose id matches no open
// invocation. TurnIndex is the offending turn in the raw transcript.
type UnmatchedResultError struct {
	TurnIndex int
	ToolUseID string
}

func (e *UnmatchedResultError) Error() string {
	return fmt.Sprintf("turn %d: tool result %q matches no open invocation", e.TurnIndex, e.ToolUseID)
}

// MissingResultError reports an invocation left open with no following
// result turn anywhere but the transcript tail.
type MissingResultError struct {
	TurnIndex int
	ToolUseID string
}

func (e *MissingResultError) Error() string {
	return fmt.Sprintf("turn %d: invocation %q has no result", e.TurnIndex, e.ToolUseID)
}

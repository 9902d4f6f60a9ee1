// Package importer rebuilds causally ordered turns from externally
// produced transcripts. Export tools flatten the fine-grained interleaving
// of a tool-using exchange: every tool invocation an assistant issued in a
// turn is batched together, and all the matching results land in one
// following turn. Reconcile re-splits those batches so that each invocation
// turn is immediately followed by its own result turn, which is the shape
// the completion API expects on replay.
//
// Reconciliation is all or nothing: any unmatched or missing result aborts
// the import and no partial output escapes.
package importer

import (
	"github.com/erg0nix/graft/internal/core"
)

// Options controls which block categories survive the import. Both default
// to true; excluding a category drops its blocks before the reconciliation
// scan without disturbing id matching among the blocks that remain.
type Options struct {
	IncludeThinking bool
	IncludeToolUse  bool
}

func DefaultOptions() Options {
	return Options{IncludeThinking: true, IncludeToolUse: true}
}

// Reconcile walks the raw transcript in order and produces the interleaved
// turn sequence. For every assistant turn containing tool invocations it:
//
//  1. splits the turn at each tool_use block, carrying the blocks
//     accumulated since the previous split point,
//  2. consumes the following batched-result turn, matching each result to
//     its invocation by id,
//  3. emits invocation and result turns pairwise in invocation order
//     (results arriving in a different order are reordered),
//  4. emits any blocks after the last invocation as a trailing turn.
//
// An open invocation with no following result turn is tolerated only at the
// very end of the transcript, where the result will arrive from a future
// live exchange.
func Reconcile(raw []core.Turn, opts Options) ([]core.Turn, error) {
	var out []core.Turn

	for i := 0; i < len(raw); i++ {
		turn := filterTurn(raw[i], opts)
		if len(turn.Blocks) == 0 {
			continue
		}

		if turn.Role != core.RoleAssistant || !turn.HasToolUse() {
			if id, found := firstResultID(turn); found {
				// A result turn that was not consumed by a preceding
				// invocation turn has nothing to match against.
				return nil, &UnmatchedResultError{TurnIndex: i, ToolUseID: id}
			}
			out = append(out, turn)
			continue
		}

		segments, pending, trailing := splitInvocations(turn)

		var resultTurn *core.Turn
		if i+1 < len(raw) {
			next := filterTurn(raw[i+1], opts)
			if _, found := firstResultID(next); found {
				resultTurn = &next
			}
		}

		if resultTurn == nil {
			if i < len(raw)-1 {
				return nil, &MissingResultError{TurnIndex: i, ToolUseID: pending[0]}
			}
			// Tail of the transcript: the invocation is still awaiting a
			// live response, which is valid.
			for _, segment := range segments {
				out = append(out, core.Turn{Role: turn.Role, Blocks: segment})
			}
			if len(trailing) > 0 {
				out = append(out, core.Turn{Role: turn.Role, Blocks: trailing})
			}
			continue
		}

		results := make(map[string]core.Block, len(pending))
		open := make(map[string]bool, len(pending))
		for _, id := range pending {
			open[id] = true
		}

		var leftover []core.Block
		for _, block := range resultTurn.Blocks {
			if block.Type != core.BlockToolResult {
				leftover = append(leftover, block)
				continue
			}
			if !open[block.ToolUseID] {
				return nil, &UnmatchedResultError{TurnIndex: i + 1, ToolUseID: block.ToolUseID}
			}
			if _, duplicate := results[block.ToolUseID]; duplicate {
				return nil, &UnmatchedResultError{TurnIndex: i + 1, ToolUseID: block.ToolUseID}
			}
			results[block.ToolUseID] = block
		}

		for k, segment := range segments {
			result, ok := results[pending[k]]
			if !ok {
				return nil, &MissingResultError{TurnIndex: i, ToolUseID: pending[k]}
			}
			out = append(out, core.Turn{Role: turn.Role, Blocks: segment})
			out = append(out, core.Turn{Role: resultTurn.Role, Blocks: []core.Block{result}})
		}

		if len(trailing) > 0 {
			out = append(out, core.Turn{Role: turn.Role, Blocks: trailing})
		}
		if len(leftover) > 0 {
			out = append(out, core.Turn{Role: resultTurn.Role, Blocks: leftover})
		}

		i++ // batched result turn consumed
	}

	return out, nil
}

// splitInvocations cuts an assistant turn at each tool_use block. Each
// segment carries the blocks accumulated since the previous split point and
// ends with its invocation; pending lists the invocation ids in original
// order; trailing holds the blocks after the last invocation.
func splitInvocations(turn core.Turn) (segments [][]core.Block, pending []string, trailing []core.Block) {
	var current []core.Block
	for _, block := range turn.Blocks {
		current = append(current, block)
		if block.Type == core.BlockToolUse {
			segments = append(segments, current)
			pending = append(pending, block.ID)
			current = nil
		}
	}
	trailing = current
	return segments, pending, trailing
}

func filterTurn(turn core.Turn, opts Options) core.Turn {
	filtered := core.Turn{Role: turn.Role}
	for _, block := range turn.Blocks {
		switch block.Type {
		case core.BlockThinking:
			if !opts.IncludeThinking {
				continue
			}
		case core.BlockToolUse, core.BlockToolResult:
			if !opts.IncludeToolUse {
				continue
			}
		}
		filtered.Blocks = append(filtered.Blocks, block)
	}
	return filtered
}

func firstResultID(turn core.Turn) (string, bool) {
	for _, block := range turn.Blocks {
		if block.Type == core.BlockToolResult {
			return block.ToolUseID, true
		}
	}
	return "", false
}

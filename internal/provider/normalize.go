package provider

import (
	"github.com/erg0nix/graft/internal/core"
)

// normalizeTurns merges consecutive same-role turns before sending. The API
// requires strict role alternation; imported transcripts and reconciled
// tool exchanges may legally hold adjacent turns of one role. Block order
// within the merged turn is preserved, and a cache marker on either turn
// survives on the merged one.
func normalizeTurns(turns []core.Turn) []core.Turn {
	if len(turns) <= 1 {
		return turns
	}

	result := []core.Turn{turns[0]}

	for i := 1; i < len(turns); i++ {
		current := turns[i]
		previous := &result[len(result)-1]

		if current.Role == previous.Role {
			previous.Blocks = append(previous.Blocks, current.Blocks...)
			previous.CacheMarker = previous.CacheMarker || current.CacheMarker
		} else {
			result = append(result, current)
		}
	}

	return result
}

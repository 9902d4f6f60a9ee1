// Package cache decides which turn boundaries become prompt-cache
// breakpoints before a conversation is handed to the provider. Markers are
// transient: they are recomputed on every send and never persisted, so the
// policy can change between calls without touching stored conversations.
package cache

import (
	"fmt"

	"github.com/erg0nix/graft/internal/core"
)

// TTL selects the prompt-cache lifetime advertised to the API.
type TTL string

const (
	TTLOff TTL = "off"
	TTL5m  TTL = "5m"
	TTL1h  TTL = "1h"
)

// MaxBreakpoints is the API's limit on cache_control markers per request.
// Annotate never emits more than this many.
const MaxBreakpoints = 4

// ParseTTL normalizes a config or command value. "on" is accepted as an
// alias for the default 5 minute TTL.
func ParseTTL(value string) (TTL, error) {
	switch value {
	case "off":
		return TTLOff, nil
	case "on", "5m":
		return TTL5m, nil
	case "1h":
		return TTL1h, nil
	default:
		return "", fmt.Errorf("invalid cache ttl %q: use off, 5m or 1h", value)
	}
}

// Annotate returns a copy of turns with CacheMarker set on the selected
// boundaries: always the boundary after the last turn, plus the
// second-to-last human turn when one exists, so the next call can reuse the
// prefix computed before the latest exchange. If the selection ever exceeds
// MaxBreakpoints, the oldest markers are dropped first. TTLOff clears every
// marker.
func Annotate(turns []core.Turn, ttl TTL) []core.Turn {
	annotated := make([]core.Turn, len(turns))
	copy(annotated, turns)
	for i := range annotated {
		annotated[i].CacheMarker = false
	}

	if ttl == TTLOff || len(annotated) < 2 {
		return annotated
	}

	marks := markerIndexes(annotated)
	if len(marks) > MaxBreakpoints {
		marks = marks[len(marks)-MaxBreakpoints:]
	}

	for _, idx := range marks {
		annotated[idx].CacheMarker = true
	}

	return annotated
}

// markerIndexes returns candidate boundaries in ascending (oldest first)
// order.
func markerIndexes(turns []core.Turn) []int {
	var marks []int

	// Second-to-last human turn. Tool-result turns share the user role but
	// are not human input, so they never anchor a breakpoint.
	var humanIndexes []int
	for i, turn := range turns {
		if turn.Role == core.RoleUser && turn.HasText() {
			humanIndexes = append(humanIndexes, i)
		}
	}
	if len(humanIndexes) >= 2 {
		marks = append(marks, humanIndexes[len(humanIndexes)-2])
	}

	last := len(turns) - 1
	if len(marks) == 0 || marks[len(marks)-1] != last {
		marks = append(marks, last)
	}

	return marks
}

// Count reports how many turns carry a cache marker.
func Count(turns []core.Turn) int {
	n := 0
	for _, turn := range turns {
		if turn.CacheMarker {
			n++
		}
	}
	return n
}

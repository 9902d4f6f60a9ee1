package core

import "fmt"

// MalformedBlockError reports a block missing a structurally required field.
type MalformedBlockError struct {
	Type  BlockType
	Field string
}

func (e *MalformedBlockError) Error() string {
	if e.Field == "type" {
		return "malformed block: missing type"
	}
	return fmt.Sprintf("malformed %s block: missing %s", e.Type, e.Field)
}

package store

import "fmt"

// NotFoundError reports a load or delete of a name with no persisted file.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no conversation named %q", e.Name)
}

// CorruptDataError reports a persisted file that cannot be decoded into
// valid turns.
type CorruptDataError struct {
	Name string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("conversation %q is corrupt: %v", e.Name, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// NameConflictError reports a save that would overwrite an existing
// conversation when the caller disallowed overwriting.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("conversation %q already exists", e.Name)
}

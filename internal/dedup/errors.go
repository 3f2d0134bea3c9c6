package dedup

import "fmt"

// ConflictError is returned by services when a duplication tier stops a creation.
// It unwraps to the matching domain sentinel so callers can use errors.Is, and
// carries the conflicting record so the user can see what already exists.
type ConflictError struct {
	Err      error
	Level    Level
	Message  string
	Existing any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v (%s): %s", e.Err, e.Level, e.Message)
}

func (e *ConflictError) Unwrap() error { return e.Err }

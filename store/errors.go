package store

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrContactNotFound = errors.New("contact not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrIndexOutOfRange = errors.New("note index out of range")
)

// ValidationError reports a malformed contact field. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s format: %q", e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IndexError reports a note position outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("note index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

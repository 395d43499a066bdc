package store

import (
	"strconv"

	"github.com/cwbudde/mayflywatch/internal/problem"
)

// FrontWriter persists the objective vectors of a front.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return descriptive errors for I/O or serialization failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type FrontWriter interface {
	// WriteFront writes one row per solution to path, replacing any
	// existing file. Implementations must not retain solutions.
	WriteFront(solutions []problem.Solution, path string) error
}

// FrontFileName returns the deterministic name of the index-th front file.
func FrontFileName(index int) string {
	return frontFilePrefix + strconv.Itoa(index)
}

const frontFilePrefix = "FUN."

// NotFoundError is returned when a requested run record, trace or front file
// does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return "not found: " + e.Path
	}
	return "not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrNotFound matches any *NotFoundError with errors.Is.
var ErrNotFound = &NotFoundError{}

package observer

import (
	"time"

	"github.com/cwbudde/mayflywatch/internal/problem"
)

// Field names a snapshot field in diagnostics.
type Field string

const (
	FieldComputingTime Field = "COMPUTING_TIME"
	FieldEvaluations   Field = "EVALUATIONS"
	FieldSolutions     Field = "SOLUTIONS"
	FieldProblem       Field = "PROBLEM"
)

// Snapshot is the state of the search loop at one point in time.
type Snapshot struct {
	// RunID identifies the run that emitted the snapshot.
	RunID string

	// ComputingTime is the elapsed time since the run started.
	ComputingTime time.Duration

	// Evaluations is the number of objective evaluations performed so far.
	// It never decreases over a run.
	Evaluations int

	// Solutions is the current best-known front, best first. It may be
	// empty early in a run. The slice is owned by the search loop.
	Solutions []problem.Solution

	// Problem is the problem being solved.
	Problem problem.Problem
}

// Require checks that the named fields carry a usable value. Numeric
// fields are missing when negative; Problem is missing when nil. Solutions
// is never missing: an empty front is a valid state.
func (s Snapshot) Require(fields ...Field) error {
	for _, f := range fields {
		switch f {
		case FieldComputingTime:
			if s.ComputingTime < 0 {
				return &MissingFieldError{Field: f}
			}
		case FieldEvaluations:
			if s.Evaluations < 0 {
				return &MissingFieldError{Field: f}
			}
		case FieldProblem:
			if s.Problem == nil {
				return &MissingFieldError{Field: f}
			}
		}
	}
	return nil
}

// Best returns the first solution of the front.
func (s Snapshot) Best() (problem.Solution, bool) {
	if len(s.Solutions) == 0 {
		return problem.Solution{}, false
	}
	return s.Solutions[0], true
}

package store

import (
	"strconv"
	"time"
)

// RunSettings is the part of the run configuration kept with a record.
type RunSettings struct {
	Problem        string `json:"problem"`
	Variables      int    `json:"variables"`
	Iterations     int    `json:"iterations"`
	Population     int    `json:"population"`
	Seed           int64  `json:"seed"`
	MaxEvaluations int    `json:"maxEvaluations,omitempty"`
	NotifyEvery    int    `json:"notifyEvery"`
	Policy         string `json:"policy,omitempty"`
}

// RunRecord is the persisted summary of a finished search run.
type RunRecord struct {
	// RunID is the unique identifier assigned when the run started
	RunID string `json:"runId"`

	// Settings holds the configuration the run was started with
	Settings RunSettings `json:"settings"`

	// Evaluations is the number of objective evaluations performed
	Evaluations int `json:"evaluations"`

	// Elapsed is the wall-clock duration of the run
	Elapsed time.Duration `json:"elapsed"`

	// BestCost is the lowest scalarized cost reached
	BestCost float64 `json:"bestCost"`

	// Front holds the objective vectors of the final front
	Front [][]float64 `json:"front"`

	// Notifications and Failures count observer deliveries
	Notifications int `json:"notifications"`
	Failures      int `json:"failures"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo is the listing view of a RunRecord, without the front.
type RunInfo struct {
	RunID       string        `json:"runId"`
	Problem     string        `json:"problem"`
	Evaluations int           `json:"evaluations"`
	FrontSize   int           `json:"frontSize"`
	Failures    int           `json:"failures"`
	Elapsed     time.Duration `json:"elapsed"`
	Timestamp   time.Time     `json:"timestamp"`
}

// ToInfo converts a RunRecord to its listing view.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:       r.RunID,
		Problem:     r.Settings.Problem,
		Evaluations: r.Evaluations,
		FrontSize:   len(r.Front),
		Failures:    r.Failures,
		Elapsed:     r.Elapsed,
		Timestamp:   r.Timestamp,
	}
}

// Validate checks that the record can be stored.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Settings.Problem == "" {
		return &ValidationError{Field: "Settings.Problem", Reason: "cannot be empty"}
	}
	if r.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if r.Notifications < 0 || r.Failures < 0 {
		return &ValidationError{Field: "Notifications", Reason: "counters cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	for i, row := range r.Front {
		if len(row) == 0 {
			return &ValidationError{Field: "Front", Reason: "row " + strconv.Itoa(i) + " is empty"}
		}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

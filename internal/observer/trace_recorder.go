package observer

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/mayflywatch/internal/store"
)

// TraceRecorder appends one JSONL entry per throttled snapshot, empty fronts
// included, so a run can be replayed with `trace show`.
type TraceRecorder struct {
	throttle Throttle
	writer   *store.TraceWriter
}

// NewTraceRecorder opens (truncating) a trace file at path.
func NewTraceRecorder(path string, frequency int) (*TraceRecorder, error) {
	throttle, err := NewThrottle(frequency)
	if err != nil {
		return nil, err
	}
	writer, err := store.NewTraceWriter(path, false)
	if err != nil {
		return nil, err
	}
	return &TraceRecorder{throttle: throttle, writer: writer}, nil
}

// Name implements Named.
func (r *TraceRecorder) Name() string { return "trace" }

// Update implements Observer.
func (r *TraceRecorder) Update(ctx context.Context, s Snapshot) error {
	if err := s.Require(FieldComputingTime, FieldEvaluations); err != nil {
		return err
	}
	if !r.throttle.Allow(s.Evaluations) {
		return nil
	}

	entry := store.TraceEntry{
		RunID:         s.RunID,
		Evaluations:   s.Evaluations,
		ComputingTime: s.ComputingTime,
		FrontSize:     len(s.Solutions),
		Timestamp:     time.Now(),
	}
	if best, ok := s.Best(); ok {
		entry.Best = best.ObjectiveValues()
	}

	if err := r.writer.Write(entry); err != nil {
		return fmt.Errorf("failed to record trace: %w", err)
	}
	return nil
}

// Entries returns the number of snapshots recorded so far.
func (r *TraceRecorder) Entries() int { return r.writer.Entries() }

// Path returns the trace file path.
func (r *TraceRecorder) Path() string { return r.writer.Path() }

// Close flushes and closes the trace file.
func (r *TraceRecorder) Close() error {
	return r.writer.Close()
}

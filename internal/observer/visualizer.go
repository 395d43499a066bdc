package observer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/mayflywatch/internal/plot"
	"github.com/cwbudde/mayflywatch/internal/problem"
)

// Visualizer streams the current front, together with the problem's
// reference front, to a live plot on throttled snapshots.
type Visualizer struct {
	throttle Throttle
	replace  bool
	plot     plot.Streamer
}

// NewVisualizer takes ownership of the plot handle p. With replace set each
// frame redraws the view; otherwise frames accumulate.
func NewVisualizer(p plot.Streamer, frequency int, replace bool) (*Visualizer, error) {
	if p == nil {
		return nil, &ConfigError{Field: "plot", Reason: "cannot be nil"}
	}
	throttle, err := NewThrottle(frequency)
	if err != nil {
		return nil, err
	}
	return &Visualizer{throttle: throttle, replace: replace, plot: p}, nil
}

// Name implements Named.
func (v *Visualizer) Name() string { return "visualizer" }

// Update implements Observer.
func (v *Visualizer) Update(ctx context.Context, s Snapshot) error {
	if err := s.Require(FieldComputingTime, FieldEvaluations, FieldProblem); err != nil {
		return err
	}
	if len(s.Solutions) == 0 || !v.throttle.Allow(s.Evaluations) {
		return nil
	}

	frame := plot.Frame{
		RunID:     s.RunID,
		Title:     Title(s.Evaluations, s.ComputingTime),
		Points:    problem.ObjectiveMatrix(s.Solutions),
		Reference: s.Problem.ReferenceFront(),
		Replace:   v.replace,
	}
	if err := v.plot.Update(ctx, frame); err != nil {
		return fmt.Errorf("failed to update plot: %w", err)
	}
	return nil
}

// Close releases the plot handle when it is closable.
func (v *Visualizer) Close() error {
	if c, ok := v.plot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Title formats the plot title for a snapshot.
func Title(evaluations int, computingTime time.Duration) string {
	return fmt.Sprintf("Eval: %d, Time: %s", evaluations, computingTime.Round(time.Millisecond))
}

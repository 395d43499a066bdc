package observer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/mayflywatch/internal/progress"
)

// ProgressBar advances a bounded progress indicator by a fixed step on every
// notification. It ignores the snapshot's content: progress is driven by
// notification frequency alone.
type ProgressBar struct {
	bar      progress.Bar
	progress int
	step     int
	maximum  int
	closed   bool
}

// ProgressOption configures a ProgressBar.
type ProgressOption func(*ProgressBar)

// WithInitial sets the cumulative count before the first notification.
// The default is 0. A positive initial count is drawn on the bar at
// construction, so the bar always shows the cumulative count.
func WithInitial(n int) ProgressOption {
	return func(p *ProgressBar) {
		p.progress = n
	}
}

// NewProgressBar drives bar towards maximum in increments of step.
func NewProgressBar(bar progress.Bar, step, maximum int, opts ...ProgressOption) (*ProgressBar, error) {
	if bar == nil {
		return nil, &ConfigError{Field: "bar", Reason: "cannot be nil"}
	}
	if step < 1 {
		return nil, &ConfigError{Field: "step", Reason: "must be at least 1"}
	}
	if maximum < 1 {
		return nil, &ConfigError{Field: "maximum", Reason: "must be at least 1"}
	}

	p := &ProgressBar{
		bar:     bar,
		step:    step,
		maximum: maximum,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.progress < 0 {
		return nil, &ConfigError{Field: "initial", Reason: "cannot be negative"}
	}

	if p.progress > 0 {
		if err := bar.Add(p.progress); err != nil {
			return nil, fmt.Errorf("failed to draw initial progress: %w", err)
		}
	}
	if p.progress >= p.maximum {
		if err := p.finish(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewTerminalProgressBar opens a terminal bar labelled desc on w.
func NewTerminalProgressBar(w io.Writer, step, maximum int, desc string, opts ...ProgressOption) (*ProgressBar, error) {
	bar, err := progress.NewTerminalBar(w, maximum, desc)
	if err != nil {
		return nil, err
	}
	return NewProgressBar(bar, step, maximum, opts...)
}

// Name implements Named.
func (p *ProgressBar) Name() string { return "progress" }

// Update implements Observer.
func (p *ProgressBar) Update(ctx context.Context, s Snapshot) error {
	if p.closed {
		return nil
	}

	p.progress += p.step
	var addErr error
	if err := p.bar.Add(p.step); err != nil {
		addErr = fmt.Errorf("failed to advance progress bar: %w", err)
	}

	if p.progress >= p.maximum {
		return errors.Join(addErr, p.finish())
	}
	return addErr
}

// Progress returns the cumulative count.
func (p *ProgressBar) Progress() int { return p.progress }

// Closed reports whether the indicator has been finalized.
func (p *ProgressBar) Closed() bool { return p.closed }

// Close finalizes the indicator if the maximum was never reached.
func (p *ProgressBar) Close() error {
	if p.closed {
		return nil
	}
	return p.finish()
}

func (p *ProgressBar) finish() error {
	p.closed = true
	if err := p.bar.Close(); err != nil {
		return fmt.Errorf("failed to close progress bar: %w", err)
	}
	return nil
}

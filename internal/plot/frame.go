package plot

import (
	"context"
	"errors"
	"time"
)

// Frame is one update of the live scatter plot.
type Frame struct {
	RunID     string      `json:"runId,omitempty"`
	Title     string      `json:"title"`
	Points    [][]float64 `json:"points"`
	Reference [][]float64 `json:"reference,omitempty"`
	// Replace redraws the view with this frame only; otherwise the frame is
	// drawn alongside the previous ones.
	Replace   bool      `json:"replace"`
	Timestamp time.Time `json:"timestamp"`
}

// Streamer receives frames for display.
type Streamer interface {
	Update(ctx context.Context, frame Frame) error
}

// ErrClosed is returned when updating a plot that has been closed.
var ErrClosed = errors.New("plot closed")

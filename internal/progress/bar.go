package progress

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Bar is a bounded progress indicator.
type Bar interface {
	// Add advances the indicator by n units and redraws it.
	Add(n int) error
	// Close finalizes the indicator. Calling Close more than once is a no-op.
	Close() error
}

// ErrClosed is returned by Add after the bar has been closed.
var ErrClosed = errors.New("progress bar closed")

// TerminalBar draws an ASCII progress bar on a terminal, redrawing the
// same line with a carriage return.
type TerminalBar struct {
	mu       sync.Mutex
	w        io.Writer
	desc     string
	total    int
	current  int
	barWidth int
	closed   bool
}

// NewTerminalBar opens a bar for total units and draws it at zero.
func NewTerminalBar(w io.Writer, total int, desc string) (*TerminalBar, error) {
	if total <= 0 {
		return nil, fmt.Errorf("progress total must be positive, got %d", total)
	}
	b := &TerminalBar{
		w:        w,
		desc:     desc,
		total:    total,
		barWidth: 40,
	}
	if err := b.draw(); err != nil {
		return nil, err
	}
	return b, nil
}

// Add implements Bar.
func (b *TerminalBar) Add(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.current += n
	return b.draw()
}

// Close implements Bar. It terminates the bar's line.
func (b *TerminalBar) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	_, err := fmt.Fprintln(b.w)
	return err
}

// Current returns the number of units drawn so far.
func (b *TerminalBar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// draw renders the bar; callers hold mu.
func (b *TerminalBar) draw() error {
	percent := float64(b.current) / float64(b.total)
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(b.barWidth))
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.barWidth-filled)

	_, err := fmt.Fprintf(b.w, "\r%s: [%s] %6.2f%% (%d/%d)", b.desc, bar, percent*100, b.current, b.total)
	if err != nil {
		return fmt.Errorf("failed to draw progress bar: %w", err)
	}
	return nil
}

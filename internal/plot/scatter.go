package plot

import (
	"context"
	"sync"
	"time"
)

// DefaultHistory bounds the frames kept in accumulate mode.
const DefaultHistory = 50

// State is the current content of a scatter plot.
type State struct {
	Title  string  `json:"title"`
	Frames []Frame `json:"frames"`
}

// Scatter is a streaming scatter plot. It keeps the frames currently on
// display and publishes every update to its hub.
type Scatter struct {
	mu      sync.RWMutex
	title   string
	hub     *Hub
	frames  []Frame
	history int
	closed  bool
}

// NewScatter opens a scatter plot publishing to hub. A nil hub gets a
// private one.
func NewScatter(title string, hub *Hub) *Scatter {
	if hub == nil {
		hub = NewHub(nil)
	}
	return &Scatter{
		title:   title,
		hub:     hub,
		history: DefaultHistory,
	}
}

// Update implements Streamer.
func (s *Scatter) Update(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if frame.Replace {
		s.frames = []Frame{frame}
	} else {
		s.frames = append(s.frames, frame)
		if len(s.frames) > s.history {
			s.frames = append([]Frame(nil), s.frames[len(s.frames)-s.history:]...)
		}
	}
	s.mu.Unlock()

	framesTotal.Inc()
	s.hub.Broadcast(frame)
	return nil
}

// State returns a copy of the frames on display.
func (s *Scatter) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Title:  s.title,
		Frames: append([]Frame(nil), s.frames...),
	}
}

// Title returns the plot title.
func (s *Scatter) Title() string {
	return s.title
}

// Hub returns the hub the plot publishes to.
func (s *Scatter) Hub() *Hub {
	return s.hub
}

// Close stops accepting updates and disconnects stream subscribers.
func (s *Scatter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.hub.Close()
	return nil
}

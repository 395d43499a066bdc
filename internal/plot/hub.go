package plot

import (
	"log/slog"
	"sync"
)

// Hub fans frames out to live stream subscribers. Sends never block: a
// subscriber whose buffer is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan Frame]struct{}
	last    *Frame // replayed to new subscribers
	closed  bool
	logger  *slog.Logger
}

// NewHub creates an empty hub. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[chan Frame]struct{}),
		logger:  logger,
	}
}

// Subscribe registers a new client channel. The most recent frame, if any,
// is delivered immediately. On a closed hub the channel carries only that
// frame and is already closed.
func (h *Hub) Subscribe() chan Frame {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Frame, 10)
	if h.last != nil {
		ch <- *h.last
	}
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}

	streamClients.Set(float64(len(h.clients)))
	h.logger.Debug("Plot client subscribed", "total_clients", len(h.clients))
	return ch
}

// Unsubscribe removes and closes a client channel.
func (h *Hub) Unsubscribe(ch chan Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}

	streamClients.Set(float64(len(h.clients)))
	h.logger.Debug("Plot client unsubscribed", "total_clients", len(h.clients))
}

// Broadcast sends a frame to every subscriber.
func (h *Hub) Broadcast(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.last = &frame

	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
			droppedFrames.Inc()
			h.logger.Warn("Plot client channel full, skipping frame", "title", frame.Title)
		}
	}
}

// Clients returns the number of active subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Closed reports whether Close has been called.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Close disconnects every subscriber. Later broadcasts are dropped; the
// last frame is still replayed to late subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan Frame]struct{})
	streamClients.Set(0)
}

package plot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/mayflywatch/internal/ui"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const streamPath = "/api/v1/plot/stream"

// Server exposes a Scatter over HTTP: an HTML page, a JSON snapshot of the
// plot and a server-sent event stream of frames.
type Server struct {
	addr         string
	scatter      *Scatter
	logger       *slog.Logger
	pingInterval time.Duration
	server       *http.Server
}

// NewServer creates a server for scatter listening on addr.
func NewServer(addr string, scatter *Scatter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:         addr,
		scatter:      scatter,
		logger:       logger,
		pingInterval: 30 * time.Second,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.loggingMiddleware)

	r.Get("/", s.handleIndex)
	r.Get("/api/v1/plot", s.handleState)
	r.Get(streamPath, s.handleStream)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting plot server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("plot server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down plot server")
		// Open streams would otherwise hold Shutdown until the timeout
		s.scatter.Hub().Close()
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.PlotPage(s.scatter.Title(), streamPath).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleState handles GET /api/v1/plot
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.scatter.State()); err != nil {
		s.logger.Error("Failed to encode plot state", "error", err)
	}
}

// handleStream handles GET /api/v1/plot/stream as server-sent events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub := s.scatter.Hub()
	if hub.Closed() {
		// Run finished: serve the final plot once and end the stream
		w.WriteHeader(http.StatusOK)
		for _, frame := range s.scatter.State().Frames {
			if err := writeSSEFrame(w, frame); err != nil {
				s.logger.Error("Failed to write SSE frame", "error", err)
				return
			}
		}
		writeSSEEnd(w)
		flusher.Flush()
		return
	}

	frames := hub.Subscribe()
	defer hub.Unsubscribe(frames)

	// Commit headers so clients see the stream open before the first frame
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Plot client disconnected")
			return

		case frame, ok := <-frames:
			if !ok {
				writeSSEEnd(w)
				flusher.Flush()
				return
			}
			if err := writeSSEFrame(w, frame); err != nil {
				s.logger.Error("Failed to write SSE frame", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEFrame writes a frame in SSE format
func writeSSEFrame(w http.ResponseWriter, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// writeSSEEnd tells the page that no more frames will follow, so it stops
// reconnecting.
func writeSSEEnd(w http.ResponseWriter) {
	fmt.Fprint(w, "event: end\ndata: {}\n\n")
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

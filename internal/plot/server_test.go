package plot

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*Server, *Scatter) {
	t.Helper()
	scatter := NewScatter("zdt1", nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer("127.0.0.1:0", scatter, logger), scatter
}

func TestServer_State(t *testing.T) {
	s, scatter := newTestServer(t)
	scatter.Update(context.Background(), Frame{Title: "Eval: 100", Points: [][]float64{{0.5, 0.3}}, Replace: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plot", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var state State
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.Title != "zdt1" {
		t.Errorf("Expected title zdt1, got %s", state.Title)
	}
	if len(state.Frames) != 1 || state.Frames[0].Title != "Eval: 100" {
		t.Errorf("Unexpected frames: %+v", state.Frames)
	}
}

func TestServer_Index(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), streamPath) {
		t.Error("Page should reference the stream endpoint")
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, scatter := newTestServer(t)
	scatter.Update(context.Background(), Frame{Title: "x"})
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("Unexpected healthz response: %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "mayflywatch_plot_frames_total") {
		t.Error("Expected plot metrics to be exposed")
	}
}

func TestServer_CORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plot", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", got)
	}
}

func TestServer_Stream(t *testing.T) {
	s, scatter := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+streamPath, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected event stream, got %s", ct)
	}

	// Headers are flushed after subscription, so the frame cannot be missed
	scatter.Update(context.Background(), Frame{Title: "Eval: 42", Replace: true})

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed reading stream: %v", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame Frame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("Invalid frame payload: %v", err)
		}
		if frame.Title != "Eval: 42" || !frame.Replace {
			t.Errorf("Unexpected frame: %+v", frame)
		}
		return
	}
}

func TestServer_StreamAfterRunFinished(t *testing.T) {
	s, scatter := newTestServer(t)
	ctx := context.Background()
	scatter.Update(ctx, Frame{Title: "Eval: 100", Points: [][]float64{{1, 2}}})
	scatter.Update(ctx, Frame{Title: "Eval: 200", Points: [][]float64{{0.5, 1}}})
	if err := scatter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, streamPath, nil))

	body := w.Body.String()
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if strings.Count(body, "data: {\"") != 2 {
		t.Errorf("Expected both frames on display to be served, got %q", body)
	}
	if !strings.Contains(body, "Eval: 200") {
		t.Errorf("Expected final frame in stream, got %q", body)
	}
	if !strings.HasSuffix(body, "event: end\ndata: {}\n\n") {
		t.Errorf("Expected stream to end with an end event, got %q", body)
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run should return nil after cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

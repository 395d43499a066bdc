package observer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeBar struct {
	added  []int
	closes int
	err    error
	failOn int // 1-based Add call that fails with err; 0 fails every call
}

func (b *fakeBar) Add(n int) error {
	b.added = append(b.added, n)
	if b.failOn > 0 && len(b.added) != b.failOn {
		return nil
	}
	return b.err
}

func (b *fakeBar) Close() error {
	b.closes++
	return nil
}

func TestProgressBar_ClosesAtMaximum(t *testing.T) {
	bar := &fakeBar{}
	p, err := NewProgressBar(bar, 5, 10)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Update(ctx, Snapshot{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if p.Progress() != 5 || p.Closed() {
		t.Fatalf("After first update: progress=%d closed=%v, want 5 open", p.Progress(), p.Closed())
	}

	if err := p.Update(ctx, Snapshot{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if p.Progress() != 10 || !p.Closed() {
		t.Fatalf("After second update: progress=%d closed=%v, want 10 closed", p.Progress(), p.Closed())
	}

	// Further notifications are ignored.
	if err := p.Update(ctx, Snapshot{}); err != nil {
		t.Fatalf("Update after close failed: %v", err)
	}
	if p.Progress() != 10 {
		t.Errorf("Expected progress to stay at 10, got %d", p.Progress())
	}
	if bar.closes != 1 {
		t.Errorf("Expected bar closed exactly once, got %d", bar.closes)
	}
	if err := p.Close(); err != nil || bar.closes != 1 {
		t.Errorf("Close after finish: err=%v closes=%d", err, bar.closes)
	}
}

func TestProgressBar_CumulativeProgress(t *testing.T) {
	bar := &fakeBar{}
	p, err := NewProgressBar(bar, 3, 100)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}

	for k := 1; k <= 7; k++ {
		if err := p.Update(context.Background(), Snapshot{}); err != nil {
			t.Fatalf("Update %d failed: %v", k, err)
		}
		if p.Progress() != 3*k {
			t.Errorf("After %d updates progress = %d, want %d", k, p.Progress(), 3*k)
		}
	}
	if p.Closed() {
		t.Error("Expected bar to remain open below maximum")
	}
}

func TestProgressBar_OvershootClosesOnce(t *testing.T) {
	bar := &fakeBar{}
	p, err := NewProgressBar(bar, 4, 10)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		_ = p.Update(context.Background(), Snapshot{})
	}
	if p.Progress() != 12 {
		t.Errorf("Expected progress 12 at close, got %d", p.Progress())
	}
	if bar.closes != 1 {
		t.Errorf("Expected one close, got %d", bar.closes)
	}
}

func TestProgressBar_WithInitial(t *testing.T) {
	bar := &fakeBar{}
	p, err := NewProgressBar(bar, 5, 10, WithInitial(5))
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}
	if len(bar.added) != 1 || bar.added[0] != 5 {
		t.Errorf("Expected initial draw of 5, got %v", bar.added)
	}

	if err := p.Update(context.Background(), Snapshot{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !p.Closed() {
		t.Error("Expected bar to close after one update with initial 5")
	}
}

func TestProgressBar_CloseEarly(t *testing.T) {
	bar := &fakeBar{}
	p, err := NewProgressBar(bar, 1, 100)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if bar.closes != 1 || !p.Closed() {
		t.Errorf("Expected early close, closes=%d closed=%v", bar.closes, p.Closed())
	}
}

func TestProgressBar_RenderFailureIsReturned(t *testing.T) {
	bar := &fakeBar{err: errors.New("broken pipe")}
	p, err := NewProgressBar(bar, 1, 10)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}
	if err := p.Update(context.Background(), Snapshot{}); err == nil {
		t.Error("Expected render failure to be returned")
	}
}

func TestProgressBar_RenderFailureAtMaximumStillCloses(t *testing.T) {
	bar := &fakeBar{err: errors.New("terminal unavailable"), failOn: 2}
	p, err := NewProgressBar(bar, 5, 10)
	if err != nil {
		t.Fatalf("NewProgressBar failed: %v", err)
	}
	ctx := context.Background()

	if err := p.Update(ctx, Snapshot{}); err != nil {
		t.Fatalf("First update failed: %v", err)
	}
	if err := p.Update(ctx, Snapshot{}); err == nil {
		t.Error("Expected render failure on the final step to be returned")
	}
	if !p.Closed() || bar.closes != 1 || p.Progress() != 10 {
		t.Fatalf("Expected close at 10, got progress=%d closed=%v closes=%d", p.Progress(), p.Closed(), bar.closes)
	}

	if err := p.Update(ctx, Snapshot{}); err != nil {
		t.Errorf("Update after close should be a no-op, got %v", err)
	}
	if p.Progress() != 10 || bar.closes != 1 {
		t.Errorf("Expected no further progress, got progress=%d closes=%d", p.Progress(), bar.closes)
	}
}

func TestNewProgressBar_InvalidConfig(t *testing.T) {
	tests := []struct {
		name          string
		step, maximum int
		opts          []ProgressOption
	}{
		{"zero step", 0, 10, nil},
		{"zero maximum", 1, 0, nil},
		{"negative initial", 1, 10, []ProgressOption{WithInitial(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProgressBar(&fakeBar{}, tt.step, tt.maximum, tt.opts...)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Expected *ConfigError, got %v", err)
			}
		})
	}
}

func TestNewTerminalProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewTerminalProgressBar(&buf, 5, 10, "Search")
	if err != nil {
		t.Fatalf("NewTerminalProgressBar failed: %v", err)
	}
	_ = p.Update(context.Background(), Snapshot{})
	_ = p.Update(context.Background(), Snapshot{})

	out := buf.String()
	if !strings.Contains(out, "Search") || !strings.Contains(out, "(10/10)") {
		t.Errorf("Unexpected terminal output: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("Expected newline after close, got %q", out)
	}
}

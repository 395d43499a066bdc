package observer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cwbudde/mayflywatch/internal/store"
)

// FrontWriter writes the objective vectors of every non-empty front to a new
// file FUN.<n> in its output directory, n counting from zero. The
// directory accumulates one file per snapshot, an audit trail of how the
// front evolved.
type FrontWriter struct {
	dir     string
	writer  store.FrontWriter
	counter int
}

// FrontWriterOption configures a FrontWriter.
type FrontWriterOption func(*FrontWriter)

// WithSerializer replaces the FUN serializer.
func WithSerializer(w store.FrontWriter) FrontWriterOption {
	return func(f *FrontWriter) {
		if w != nil {
			f.writer = w
		}
	}
}

// NewFrontWriter prepares dir so the run starts from an empty directory: an
// existing directory has its contents removed, a missing one is created.
// Both cases are surfaced as warnings on logger. Failure to prepare the
// directory is returned before any notification happens.
func NewFrontWriter(dir string, logger *slog.Logger, opts ...FrontWriterOption) (*FrontWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	state, err := store.PrepareDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare front directory %s: %w", dir, err)
	}
	if state.Created {
		logger.Warn("Directory does not exist. Creating it.", "directory", dir)
	} else {
		logger.Warn("Directory exists. Removing contents.", "directory", dir, "removed", state.Removed)
	}

	f := &FrontWriter{
		dir:    dir,
		writer: store.FUNWriter{Logger: logger},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name implements Named.
func (f *FrontWriter) Name() string { return "front-writer" }

// Update implements Observer. The counter advances only after a
// successful write, so file indices stay contiguous.
func (f *FrontWriter) Update(ctx context.Context, s Snapshot) error {
	if len(s.Solutions) == 0 {
		return nil
	}

	path := filepath.Join(f.dir, store.FrontFileName(f.counter))
	if err := f.writer.WriteFront(s.Solutions, path); err != nil {
		return fmt.Errorf("failed to write front %d: %w", f.counter, err)
	}
	f.counter++
	return nil
}

// Counter returns the number of fronts written so far.
func (f *FrontWriter) Counter() int { return f.counter }

// Dir returns the output directory.
func (f *FrontWriter) Dir() string { return f.dir }

package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceEntry represents a single snapshot in the run trace.
// Each entry is serialized as a JSON line in the trace file.
type TraceEntry struct {
	// RunID identifies the search run that produced the snapshot
	RunID string `json:"runId"`

	// Evaluations is the number of objective evaluations performed so far
	Evaluations int `json:"evaluations"`

	// ComputingTime is the elapsed run time when the snapshot was taken
	ComputingTime time.Duration `json:"computingTime"`

	// FrontSize is the number of solutions in the front
	FrontSize int `json:"frontSize"`

	// Best is the objective vector of the first solution of the front
	Best []float64 `json:"best,omitempty"`

	// Timestamp records when this trace entry was created
	Timestamp time.Time `json:"timestamp"`
}

// TraceWriter appends trace entries to a JSONL file through a buffer.
// It is safe for concurrent use.
type TraceWriter struct {
	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	enc     *json.Encoder
	path    string
	entries int
}

// NewTraceWriter opens the trace at path, creating parent directories.
// With appendMode the existing entries are kept, otherwise the file is
// truncated.
func NewTraceWriter(path string, appendMode bool) (*TraceWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("trace path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	buf := bufio.NewWriterSize(file, 64*1024)
	return &TraceWriter{
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
		path: path,
	}, nil
}

// Write buffers one entry. It reaches the file on Flush or Close.
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to write trace entry %d: %w", tw.entries, err)
	}
	tw.entries++
	return nil
}

// Entries returns the number of entries written by this writer.
func (tw *TraceWriter) Entries() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.entries
}

// Flush pushes buffered entries to disk.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.flushLocked()
}

func (tw *TraceWriter) flushLocked() error {
	if err := tw.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace %s: %w", tw.path, err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace %s: %w", tw.path, err)
	}
	return nil
}

// Close flushes and closes the file. The file is closed even when the
// flush fails.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	ferr := tw.flushLocked()
	if err := tw.file.Close(); err != nil && ferr == nil {
		return fmt.Errorf("failed to close trace %s: %w", tw.path, err)
	}
	return ferr
}

func (tw *TraceWriter) Path() string { return tw.path }

// TraceReader decodes trace entries one at a time.
type TraceReader struct {
	file *os.File
	dec  *json.Decoder
}

// NewTraceReader opens the trace at path. A missing file is a
// *NotFoundError.
func NewTraceReader(path string) (*TraceReader, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &TraceReader{file: file, dec: json.NewDecoder(bufio.NewReader(file))}, nil
}

// Read returns the next entry, or io.EOF at the end of the trace.
func (tr *TraceReader) Read() (*TraceEntry, error) {
	var entry TraceEntry
	if err := tr.dec.Decode(&entry); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll returns the remaining entries.
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

func (tr *TraceReader) Close() error {
	return tr.file.Close()
}

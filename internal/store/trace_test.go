package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "trace.jsonl")

	writer, err := NewTraceWriter(tracePath, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{RunID: "run-1", Evaluations: 100, ComputingTime: time.Second, FrontSize: 1, Best: []float64{3.5}, Timestamp: time.Now()},
		{RunID: "run-1", Evaluations: 200, ComputingTime: 2 * time.Second, FrontSize: 4, Best: []float64{1.25, 0.5}, Timestamp: time.Now()},
		{RunID: "run-1", Evaluations: 300, ComputingTime: 3 * time.Second, Timestamp: time.Now()},
	}

	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		t.Fatalf("Trace file not created: %s", tracePath)
	}

	reader, err := NewTraceReader(tracePath)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	readEntries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	if len(readEntries) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(readEntries))
	}

	for i, entry := range readEntries {
		if entry.Evaluations != entries[i].Evaluations {
			t.Errorf("Entry %d: expected evaluations %d, got %d", i, entries[i].Evaluations, entry.Evaluations)
		}
		if entry.ComputingTime != entries[i].ComputingTime {
			t.Errorf("Entry %d: expected computing time %v, got %v", i, entries[i].ComputingTime, entry.ComputingTime)
		}
		if len(entry.Best) != len(entries[i].Best) {
			t.Errorf("Entry %d: expected %d objectives, got %d", i, len(entries[i].Best), len(entry.Best))
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	writer1, err := NewTraceWriter(tracePath, false)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	writer1.Write(TraceEntry{Evaluations: 1})
	writer1.Close()

	writer2, err := NewTraceWriter(tracePath, true)
	if err != nil {
		t.Fatalf("Failed to create appending writer: %v", err)
	}
	writer2.Write(TraceEntry{Evaluations: 2})
	writer2.Close()

	reader, err := NewTraceReader(tracePath)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after append, got %d", len(entries))
	}
	if entries[0].Evaluations != 1 || entries[1].Evaluations != 2 {
		t.Errorf("Unexpected order: %+v", entries)
	}
}

func TestTraceWriter_Truncate(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	w, _ := NewTraceWriter(tracePath, false)
	w.Write(TraceEntry{Evaluations: 1})
	w.Close()

	w, _ = NewTraceWriter(tracePath, false)
	w.Close()

	reader, _ := NewTraceReader(tracePath)
	defer reader.Close()

	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected empty trace after truncation, got %v", err)
	}
}

func TestTraceWriter_FlushMakesEntriesVisible(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	w, err := NewTraceWriter(tracePath, false)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	w.Write(TraceEntry{Evaluations: 7})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	data, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected flushed data on disk")
	}
	if w.Entries() != 1 {
		t.Errorf("Expected 1 entry, got %d", w.Entries())
	}
}

func TestNewTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraceReader_InvalidLine(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")
	if err := os.WriteFile(tracePath, []byte("{not json}\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reader, err := NewTraceReader(tracePath)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Read(); err == nil || err == io.EOF {
		t.Errorf("Expected unmarshal error, got %v", err)
	}
}

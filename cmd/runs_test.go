package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/mayflywatch/internal/store"
)

func TestSelectRunsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 0, 7, now)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	if toDelete[0].RunID != "run1" || toDelete[1].RunID != "run4" {
		t.Errorf("Expected run1 and run4, got %s and %s", toDelete[0].RunID, toDelete[1].RunID)
	}
}

func TestSelectRunsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRunsForDeletion(infos, 2, 0, now)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 runs to delete, got %d", len(toDelete))
	}
	if toDelete[0].RunID != "run4" || toDelete[1].RunID != "run1" {
		t.Errorf("Expected the oldest runs (run4, run1), got %s and %s", toDelete[0].RunID, toDelete[1].RunID)
	}
}

func TestSelectRunsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
		{RunID: "run5", Timestamp: now.AddDate(0, 0, -2)},
	}

	// Age selects run1 and run4; keeping 3 selects the same two again.
	toDelete := selectRunsForDeletion(infos, 3, 7, now)

	if len(toDelete) != 2 {
		t.Errorf("Expected 2 runs to delete without duplicates, got %d", len(toDelete))
	}
}

func TestSelectRunsForDeletion_NothingToDelete(t *testing.T) {
	now := time.Now()
	infos := []store.RunInfo{{RunID: "run1", Timestamp: now}}

	if got := selectRunsForDeletion(infos, 5, 7, now); len(got) != 0 {
		t.Errorf("Expected nothing to delete, got %d", len(got))
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("Hello, World!")
	if err := os.WriteFile(filepath.Join(tmpDir, "test.txt"), content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		if result := formatBytes(tt.bytes); result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func saveTestRun(t *testing.T, dir, runID string, finished time.Time) {
	t.Helper()
	runStore, err := store.NewRunStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	record := &store.RunRecord{
		RunID:       runID,
		Settings:    store.RunSettings{Problem: "zdt1", Variables: 3, Iterations: 10, Population: 20, NotifyEvery: 10},
		Evaluations: 100,
		Front:       [][]float64{{0, 1}, {1, 0}},
		Timestamp:   finished,
	}
	if err := runStore.SaveRun(record); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
}

func TestListRuns_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	if err := listRuns(&buf, t.TempDir()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}

func TestListRuns_WithRuns(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRun(t, tmpDir, "test-run-id", time.Now())

	var buf bytes.Buffer
	if err := listRuns(&buf, tmpDir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "test-run-id") || !strings.Contains(out, "Total runs: 1") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestShowRun(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRun(t, tmpDir, "run-a", time.Now())

	var buf bytes.Buffer
	if err := showRun(&buf, tmpDir, "run-a"); err != nil {
		t.Fatalf("showRun failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Front size: 2") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
	if err := showRun(&buf, tmpDir, "missing"); err == nil {
		t.Error("Expected error for missing run")
	}
}

func TestRunsCleanCommand_NoFlags(t *testing.T) {
	originalDataDir := runsDataDir
	runsDataDir = t.TempDir()
	defer func() { runsDataDir = originalDataDir }()

	keepLast = 0
	olderThanDays = 0

	if err := runCleanRuns(cleanRunsCmd, nil); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestRunsCleanCommand_WithForce(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRun(t, tmpDir, "old-run", time.Now().AddDate(0, 0, -30))
	saveTestRun(t, tmpDir, "new-run", time.Now())

	originalDataDir := runsDataDir
	runsDataDir = tmpDir
	defer func() { runsDataDir = originalDataDir }()

	keepLast = 0
	olderThanDays = 7
	forceClean = true
	defer func() { olderThanDays, forceClean = 0, false }()

	var buf bytes.Buffer
	cleanRunsCmd.SetOut(&buf)
	defer cleanRunsCmd.SetOut(nil)

	if err := runCleanRuns(cleanRunsCmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	runStore, _ := store.NewRunStore(tmpDir)
	if _, err := runStore.LoadRun("old-run"); err == nil {
		t.Error("Expected old run to be deleted")
	}
	if _, err := runStore.LoadRun("new-run"); err != nil {
		t.Errorf("Expected new run to be kept: %v", err)
	}
	if !strings.Contains(buf.String(), "Deleted 1 run(s), 0 failed.") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

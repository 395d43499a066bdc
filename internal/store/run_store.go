package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// RunStore keeps run records on the filesystem in
// <baseDir>/runs/<runID>/run.json.
//
// Writes use temp file + rename, so concurrent readers never observe a
// partial record.
type RunStore struct {
	baseDir string
}

// NewRunStore creates a run store, creating baseDir if needed.
func NewRunStore(baseDir string) (*RunStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &RunStore{baseDir: baseDir}, nil
}

func (rs *RunStore) runDir(runID string) string {
	return filepath.Join(rs.baseDir, "runs", runID)
}

func (rs *RunStore) recordPath(runID string) string {
	return filepath.Join(rs.runDir(runID), "run.json")
}

// RunDir returns the directory holding the artifacts of runID.
func (rs *RunStore) RunDir(runID string) string {
	return rs.runDir(runID)
}

// SaveRun validates and atomically writes record.
func (rs *RunStore) SaveRun(record *RunRecord) error {
	if record == nil {
		return fmt.Errorf("run record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	dir := rs.runDir(record.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run record: %w", err)
	}

	finalPath := rs.recordPath(record.RunID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename run file: %w", err)
	}

	slog.Debug("Run record saved", "run_id", record.RunID, "path", finalPath)
	return nil
}

// LoadRun reads the record of runID.
func (rs *RunStore) LoadRun(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := rs.recordPath(runID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize run record: %w", err)
	}
	return &record, nil
}

// ListRuns returns the listing view of every stored run, oldest first.
// Directories without a readable record are skipped.
func (rs *RunStore) ListRuns() ([]RunInfo, error) {
	runsDir := filepath.Join(rs.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []RunInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := rs.LoadRun(entry.Name())
		if err != nil {
			slog.Warn("Skipping unreadable run record", "run_id", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, record.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})
	return infos, nil
}

// DeleteRun removes the run directory and everything in it.
func (rs *RunStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	dir := rs.runDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{Path: dir}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Run record deleted", "run_id", runID, "path", dir)
	return nil
}

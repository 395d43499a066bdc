package store

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/mayflywatch/internal/problem"
)

// FUNWriter writes fronts in the plain-text FUN layout: one row per
// solution, objective values separated by a single space.
//
// Files are written to a temporary sibling and renamed into place so a
// reader never observes a partially written front.
type FUNWriter struct {
	// Logger receives a debug line per written front. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// WriteFront implements FrontWriter.
func (fw FUNWriter) WriteFront(solutions []problem.Solution, path string) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create front file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, s := range solutions {
		if _, err := w.WriteString(formatRow(s.ObjectiveValues())); err != nil {
			f.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write front row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush front file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close front file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename front file: %w", err)
	}

	logger := fw.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Front written", "path", path, "solutions", len(solutions))
	return nil
}

func formatRow(values []float64) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// ReadFront parses a FUN file back into objective rows.
func ReadFront(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open front file: %w", err)
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid objective value %q: %w", filepath.Base(path), line, field, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan front file: %w", err)
	}
	return rows, nil
}

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DirState describes what PrepareDir had to do.
type DirState struct {
	// Created is true when the directory did not exist.
	Created bool
	// Removed is the number of entries deleted from an existing directory.
	Removed int
}

// PrepareDir guarantees dir exists and is empty. An existing directory has
// its contents removed but is itself kept; a missing one is created along
// with any missing parents.
func PrepareDir(dir string) (DirState, error) {
	if dir == "" {
		return DirState{}, fmt.Errorf("directory cannot be empty")
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return DirState{}, fmt.Errorf("failed to create directory: %w", err)
		}
		return DirState{Created: true}, nil
	} else if err != nil {
		return DirState{}, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return DirState{}, fmt.Errorf("%s exists and is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirState{}, fmt.Errorf("failed to read directory: %w", err)
	}

	var state DirState
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return state, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		state.Removed++
	}
	return state, nil
}

// FrontFile describes one persisted front.
type FrontFile struct {
	Index   int
	Path    string
	Size    int64
	Rows    int
	ModTime time.Time
}

// FrontFiles lists the FUN.<n> files in dir ordered by index. Other entries
// are ignored.
func FrontFiles(dir string) ([]FrontFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: dir}
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []FrontFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), frontFilePrefix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), frontFilePrefix))
		if err != nil || index < 0 {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		path := filepath.Join(dir, entry.Name())
		rows, err := ReadFront(path)
		if err != nil {
			return nil, err
		}

		files = append(files, FrontFile{
			Index:   index,
			Path:    path,
			Size:    info.Size(),
			Rows:    len(rows),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Index < files[j].Index })
	return files, nil
}

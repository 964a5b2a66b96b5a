package sfm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"sfm/internal/fs"
)

// MoveResult summarizes a batch move. A failure of one file never stops
// the rest of the batch.
type MoveResult struct {
	Moved  []string // destination paths
	Failed []Failure
}

// Mover relocates files into per-category folders.
type Mover struct {
	logger Logger
}

// NewMover creates a Mover that reports per-file failures to logger.
func NewMover(logger Logger) *Mover {
	return &Mover{logger: logger}
}

// MoveCategorized moves every file in categorized into
// <destBase>/<category>. Buckets are processed in table order and empty
// buckets create no folder. A category folder that cannot be created fails
// every file of that bucket; other buckets still run.
func (m *Mover) MoveCategorized(destBase string, table *CategoryTable, categorized map[string][]string) *MoveResult {
	result := &MoveResult{}

	for _, category := range table.Names() {
		files := categorized[category]
		if len(files) == 0 {
			continue
		}

		targetDir := filepath.Join(destBase, category)
		if err := fs.EnsureDirectory(targetDir); err != nil {
			for _, f := range files {
				m.fail(result, f, err)
			}
			continue
		}

		for _, f := range files {
			dest, err := moveFile(f, targetDir)
			if err != nil {
				m.fail(result, f, err)
				continue
			}
			result.Moved = append(result.Moved, dest)
			m.logger.Debug("file moved", "path", f, "category", category)
		}
	}

	return result
}

func (m *Mover) fail(result *MoveResult, path string, err error) {
	m.logger.Warn("failed to move file", "path", path, "error", err)
	result.Failed = append(result.Failed, Failure{Path: path, Err: err})
}

// moveFile moves src into dir keeping its base name. It refuses to
// overwrite an existing destination. Renames across devices fall back to
// copy and remove.
func moveFile(src, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(src))
	if fs.PathExists(dest) {
		return "", fmt.Errorf("destination already exists: %s", dest)
	}

	err := os.Rename(src, dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("moving file: %w", err)
	}

	if err := copyFile(src, dest, plainCopy); err != nil {
		return "", fmt.Errorf("copying across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing source after copy: %w", err)
	}
	return dest, nil
}

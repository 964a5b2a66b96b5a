package sfm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeFunc reads source content from r and writes its stored form to w.
type writeFunc func(r io.Reader, w io.Writer) error

// plainCopy stores content unchanged.
func plainCopy(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

// copyFile writes src to destPath through write using a temp file in the
// destination directory and an atomic rename. The permission bits and
// modification time of src are applied to the result. The temp file is
// removed on any failure.
func copyFile(src, destPath string, write writeFunc) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := write(in, tmpFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting modification time: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

package sfm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileRecord describes a file to be created by the store operation.
type FileRecord struct {
	Name      string // without extension
	Dir       string
	Extension string // leading dot, lower-case
}

// NewFileRecord builds a FileRecord, normalizing ext to a lower-case
// extension with a single leading dot. An empty ext yields no extension.
func NewFileRecord(dir, name, ext string) FileRecord {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext != "" {
		ext = "." + ext
	}
	return FileRecord{
		Name:      strings.TrimSpace(name),
		Dir:       dir,
		Extension: ext,
	}
}

// Validate checks that the record names a single file directly inside Dir.
func (r FileRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: file name is required", ErrInvalidName)
	}
	full := r.FullName()
	if full == "." || full == ".." || filepath.Base(full) != full || strings.ContainsAny(full, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, full)
	}
	return nil
}

// FullName returns the file name including its extension.
func (r FileRecord) FullName() string {
	return r.Name + r.Extension
}

// Path returns the full path of the file.
func (r FileRecord) Path() string {
	return filepath.Join(r.Dir, r.FullName())
}

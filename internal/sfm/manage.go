package sfm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sfm/internal/fs"
)

// dateLayout is the accepted layout for date-range arguments.
const dateLayout = "2006-01-02"

// ListedFile is one entry of a tree listing.
type ListedFile struct {
	Folder  string // immediate subfolder of the base, empty for loose files
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// DeleteResult summarizes a bulk delete.
type DeleteResult struct {
	Deleted []string
	Failed  []Failure
}

// ListAll lists the entries of every immediate subfolder of basePath plus
// the loose entries of basePath itself.
func (s *Service) ListAll(basePath string) ([]ListedFile, error) {
	if !fs.IsDir(basePath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, basePath)
	}

	names, err := fs.ListEntries(basePath)
	if err != nil {
		return nil, err
	}

	var out []ListedFile
	for _, name := range names {
		full := filepath.Join(basePath, name)
		info, err := os.Lstat(full)
		if err != nil {
			s.logger.Debug("entry vanished while listing", "path", full)
			continue
		}
		if !info.IsDir() {
			out = append(out, listed("", name, info))
			continue
		}

		children, err := fs.ListEntries(full)
		if err != nil {
			s.logger.Warn("cannot list folder", "path", full, "error", err)
			continue
		}
		for _, child := range children {
			cinfo, err := os.Lstat(filepath.Join(full, child))
			if err != nil {
				continue
			}
			out = append(out, listed(name, child, cinfo))
		}
	}
	return out, nil
}

func listed(folder, name string, info os.FileInfo) ListedFile {
	return ListedFile{
		Folder:  folder,
		Name:    name,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// ListFolders returns the immediate subfolders of basePath.
func (s *Service) ListFolders(basePath string) ([]string, error) {
	if !fs.IsDir(basePath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, basePath)
	}
	return fs.ListSubdirectories(basePath)
}

// ListFolderFiles returns the entry names of the subfolder of basePath
// whose name matches folder case-insensitively.
func (s *Service) ListFolderFiles(basePath, folder string) ([]string, error) {
	dir, err := findFolder(basePath, folder)
	if err != nil {
		return nil, err
	}
	return fs.ListEntries(dir)
}

// PreviewFiles returns the regular files inside basePath/folder so the
// caller can ask for confirmation before acting on them.
func (s *Service) PreviewFiles(basePath, folder string) ([]string, error) {
	dir := filepath.Join(basePath, folder)
	if !fs.IsDir(dir) {
		return nil, fmt.Errorf("%w: directory %q in %s", ErrNotFound, folder, basePath)
	}
	return fs.ListFiles(dir)
}

// DeleteByDate removes the regular files of basePath/folder whose
// modification time falls strictly between the start and end dates
// (YYYY-MM-DD, local midnight). Invalid dates abort before anything is
// deleted.
func (s *Service) DeleteByDate(basePath, folder, start, end string) (*DeleteResult, error) {
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(start), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, start)
	}
	until, err := time.ParseInLocation(dateLayout, strings.TrimSpace(end), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, end)
	}

	dir := filepath.Join(basePath, folder)
	if !fs.IsDir(dir) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := fs.ListFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	for _, f := range files {
		info, err := os.Lstat(f)
		if err != nil {
			result.Failed = append(result.Failed, Failure{Path: f, Err: err})
			continue
		}
		mt := info.ModTime()
		if !mt.After(from) || !mt.Before(until) {
			continue
		}
		if err := os.Remove(f); err != nil {
			s.logger.Warn("failed to delete file", "path", f, "error", err)
			result.Failed = append(result.Failed, Failure{Path: f, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, f)
	}

	s.logger.Info("files deleted by date", "dir", dir, "deleted", len(result.Deleted), "failed", len(result.Failed))
	s.record(dir, OpDeleteByDate)
	return result, nil
}

// DeleteFolder removes the subfolder of basePath matching name
// case-insensitively, with all its contents. It returns the removed path.
func (s *Service) DeleteFolder(basePath, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := findFolder(basePath, name)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("deleting folder %s: %w", dir, err)
	}

	s.logger.Info("folder deleted", "path", dir)
	s.record(dir, OpFolderDeleted)
	return dir, nil
}

// DeleteEmptyFolders removes every immediate subfolder of basePath that has
// no entries at all. A folder holding only empty folders is kept; one call
// does not cascade.
func (s *Service) DeleteEmptyFolders(basePath string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fs.IsDir(basePath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, basePath)
	}

	names, err := fs.ListSubdirectories(basePath)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	for _, name := range names {
		dir := filepath.Join(basePath, name)
		empty, err := fs.IsEmptyDir(dir)
		if err != nil {
			result.Failed = append(result.Failed, Failure{Path: dir, Err: err})
			continue
		}
		if !empty {
			continue
		}
		// os.Remove fails on a directory that gained entries since the check.
		if err := os.Remove(dir); err != nil {
			result.Failed = append(result.Failed, Failure{Path: dir, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, dir)
		s.record(dir, OpFolderDeleted)
	}

	s.logger.Info("empty folders deleted", "base", basePath, "deleted", len(result.Deleted))
	return result, nil
}

// HashFile computes the SHA-256 of basePath/folder/name and logs it.
func (s *Service) HashFile(basePath, folder, name string) (string, error) {
	path := filepath.Join(basePath, folder, name)
	if !fs.IsRegular(path) {
		return "", fmt.Errorf("%w: file %q in folder %q", ErrNotFound, name, folder)
	}

	digest, err := HashFile(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.record(path, HashOperation(digest))
	s.mu.Unlock()
	return digest, nil
}

// findFolder returns the path of the subfolder of basePath whose name
// equals name ignoring case.
func findFolder(basePath, name string) (string, error) {
	if !fs.IsDir(basePath) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, basePath)
	}
	dirs, err := fs.ListSubdirectories(basePath)
	if err != nil {
		return "", err
	}
	for _, d := range dirs {
		if strings.EqualFold(d, strings.TrimSpace(name)) {
			return filepath.Join(basePath, d), nil
		}
	}
	return "", fmt.Errorf("%w: folder %q in %s", ErrNotFound, name, basePath)
}

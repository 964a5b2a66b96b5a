package sfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sfm/internal/fs"
)

// DefaultBackupDirName is the folder under the base path that holds the
// dated backup roots.
const DefaultBackupDirName = "Backup"

// EncryptedSuffix is appended to mirrored files written by an encrypting
// engine.
const EncryptedSuffix = ".age"

// Encryptor seals backup content. Only the public half of a key pair is
// needed to back up; decryption happens outside the engine.
type Encryptor interface {
	Encrypt(r io.Reader, w io.Writer) error
}

// BackupResult summarizes a single backup pass.
type BackupResult struct {
	BasePath   string
	Root       string   // dated backup root used by this pass
	Copied     []string // relative paths newly mirrored
	Skipped    int      // files whose mirrored target already existed
	Ignored    int      // files excluded by ignore patterns
	Failed     []Failure
	StartedAt  time.Time
	FinishedAt time.Time
}

// AlreadyBackedUp reports whether the pass found nothing new to copy.
func (r *BackupResult) AlreadyBackedUp() bool {
	return len(r.Copied) == 0
}

// BackupEngine mirrors a directory tree into a dated backup root under the
// tree itself. A pass only copies files whose mirrored target is missing,
// so repeated passes over an unchanged tree copy nothing.
type BackupEngine struct {
	dirName   string
	ignore    []string
	encryptor Encryptor
	clock     Clock
	logger    Logger
}

// NewBackupEngine creates an engine. dirName names the backup folder under
// the base path (DefaultBackupDirName when empty). ignore holds extra
// patterns applied on top of the tree's .sfmignore. encryptor may be nil
// for plain copies.
func NewBackupEngine(dirName string, ignore []string, encryptor Encryptor, clock Clock, logger Logger) *BackupEngine {
	if dirName == "" {
		dirName = DefaultBackupDirName
	}
	return &BackupEngine{
		dirName:   dirName,
		ignore:    ignore,
		encryptor: encryptor,
		clock:     clock,
		logger:    logger,
	}
}

// DirName returns the backup folder name.
func (e *BackupEngine) DirName() string {
	return e.dirName
}

// BackupRoot returns the dated backup root for basePath at time t:
// <basePath>/<dirName>/<YYYY-MM-DD>.
func (e *BackupEngine) BackupRoot(basePath string, t time.Time) string {
	return filepath.Join(basePath, e.dirName, t.Format("2006-01-02"))
}

// IsBackupPath reports whether rel, a path relative to the base, lies in a
// backup folder: any of its segments equals the backup folder name.
func (e *BackupEngine) IsBackupPath(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == e.dirName {
			return true
		}
	}
	return false
}

// ProgressFunc is called after every copy attempt of a pass, successful or
// not. Files already mirrored or ignored are not reported, so the number of
// calls matches the length of Pending taken just before the pass.
type ProgressFunc func(rel string)

// RunBackup walks basePath and mirrors every regular file that has no copy
// yet under today's backup root. Per-file failures are collected in the
// result and do not stop the walk. A missing base path returns
// ErrBaseMissing before anything is created.
func (e *BackupEngine) RunBackup(ctx context.Context, basePath string) (*BackupResult, error) {
	return e.RunBackupProgress(ctx, basePath, nil)
}

// RunBackupProgress is RunBackup with a progress callback. progress may be
// nil.
func (e *BackupEngine) RunBackupProgress(ctx context.Context, basePath string, progress ProgressFunc) (*BackupResult, error) {
	base, err := resolveBase(basePath)
	if err != nil {
		return nil, err
	}

	started := e.clock.Now()
	result := &BackupResult{
		BasePath:  base,
		Root:      e.BackupRoot(base, started),
		StartedAt: started,
	}

	if err := fs.EnsureDirectory(result.Root); err != nil {
		return nil, fmt.Errorf("creating backup root: %w", err)
	}

	write := writeFunc(plainCopy)
	if e.encryptor != nil {
		write = e.encryptor.Encrypt
	}

	walkErr := e.walk(ctx, base, result.Root, func(v visit) {
		switch {
		case v.err != nil:
			e.failCopy(result, v.rel, v.err)
		case v.ignored:
			result.Ignored++
		case fs.PathExists(v.target):
			result.Skipped++
		default:
			if progress != nil {
				defer progress(v.rel)
			}
			if err := fs.EnsureDirectory(filepath.Dir(v.target)); err != nil {
				e.failCopy(result, v.rel, err)
				return
			}
			if err := copyFile(v.path, v.target, write); err != nil {
				e.failCopy(result, v.rel, err)
				return
			}
			result.Copied = append(result.Copied, v.rel)
			e.logger.Debug("file backed up", "path", v.rel)
		}
	})

	result.FinishedAt = e.clock.Now()

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return result, walkErr
		}
		return result, fmt.Errorf("walking %s: %w", base, walkErr)
	}

	if result.AlreadyBackedUp() {
		e.logger.Info("all files already backed up, no new files found", "base", base, "failed", len(result.Failed))
	} else {
		e.logger.Info("backup pass complete", "base", base, "root", result.Root,
			"copied", len(result.Copied), "skipped", result.Skipped, "failed", len(result.Failed))
	}
	return result, nil
}

// Pending returns the relative paths a pass started now would copy. It
// creates nothing.
func (e *BackupEngine) Pending(ctx context.Context, basePath string) ([]string, error) {
	base, err := resolveBase(basePath)
	if err != nil {
		return nil, err
	}
	root := e.BackupRoot(base, e.clock.Now())

	var pending []string
	walkErr := e.walk(ctx, base, root, func(v visit) {
		if v.err == nil && !v.ignored && !fs.PathExists(v.target) {
			pending = append(pending, v.rel)
		}
	})
	if walkErr != nil {
		return pending, fmt.Errorf("walking %s: %w", base, walkErr)
	}
	return pending, nil
}

// visit describes one regular file (or unreadable entry) found by walk.
type visit struct {
	path    string
	rel     string
	target  string
	ignored bool
	err     error
}

// walk calls fn for every regular file under base outside the backup
// folders, plus once for every entry that could not be read. It stops
// early only when ctx is done or base itself is unreadable.
func (e *BackupEngine) walk(ctx context.Context, base, root string, fn func(visit)) error {
	matcher, err := fs.LoadIgnoreMatcher(base, e.ignore)
	if err != nil {
		e.logger.Warn("ignore file unreadable, backing up everything", "base", base, "error", err)
		matcher = nil
	}

	suffix := ""
	if e.encryptor != nil {
		suffix = EncryptedSuffix
	}

	return filepath.WalkDir(base, func(p string, d iofs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(base, p)
		if relErr != nil {
			rel = p
		}

		if err != nil {
			if p == base {
				return err
			}
			fn(visit{path: p, rel: rel, err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p == base {
				return nil
			}
			if e.IsBackupPath(rel) {
				return filepath.SkipDir
			}
			if matcher.MatchDir(rel) {
				e.logger.Debug("skipping ignored folder", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fn(visit{
			path:    p,
			rel:     rel,
			target:  filepath.Join(root, rel) + suffix,
			ignored: matcher.Match(rel),
		})
		return nil
	})
}

func resolveBase(basePath string) (string, error) {
	info, err := os.Stat(basePath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrBaseMissing, basePath)
	}
	base, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("resolving base path: %w", err)
	}
	return base, nil
}

func (e *BackupEngine) failCopy(result *BackupResult, rel string, err error) {
	e.logger.Warn("failed to back up file", "path", rel, "error", err)
	result.Failed = append(result.Failed, Failure{Path: rel, Err: err})
}

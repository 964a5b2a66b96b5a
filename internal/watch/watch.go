// Package watch subscribes to file creation events under a directory tree
// and runs a backup pass for each qualifying event.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"sfm/internal/sfm"
)

// TriggerFunc runs one backup pass. It is called from the watcher's event
// goroutine, one call at a time.
type TriggerFunc func(ctx context.Context) error

// Watcher owns a recursive fsnotify subscription. It is created by Start
// and released by Stop; a stopped Watcher cannot be restarted.
type Watcher struct {
	watcher *fsnotify.Watcher
	rootDir string
	skipDir string
	trigger TriggerFunc
	logger  sfm.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Start subscribes to creation events under rootDir, recursively. Folders
// named backupDirName are neither subscribed nor trigger passes. A Create
// event for a file calls trigger. The watcher stops when ctx is cancelled
// or Stop is called.
func Start(ctx context.Context, rootDir, backupDirName string, trigger TriggerFunc, logger sfm.Logger) (*Watcher, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving watch root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", sfm.ErrBaseMissing, root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		watcher: fw,
		rootDir: root,
		skipDir: backupDirName,
		trigger: trigger,
		logger:  logger,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if _, err := w.addRecursive(root); err != nil {
		cancel()
		fw.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", root, err)
	}

	go w.run(ctx)

	logger.Info("watcher started", "root", root)
	return w, nil
}

// RootDir returns the watched directory.
func (w *Watcher) RootDir() string {
	return w.rootDir
}

// Done is closed once the event goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stop cancels the subscription and waits for the event goroutine to
// exit. A pass in progress is cancelled between files. Stop is safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	<-w.done
	err := w.watcher.Close()
	w.logger.Info("watcher stopped", "root", w.rootDir)
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if w.inBackupDir(event.Name) {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		// Gone before we looked; a later event covers anything that stays.
		return
	}
	if info.IsDir() {
		// Files written before the folder was subscribed raise no event of
		// their own, so a populated folder triggers a pass itself.
		sawFile, err := w.addRecursive(event.Name)
		if err != nil {
			w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
		}
		if sawFile {
			w.runPass(ctx, event.Name)
		}
		return
	}

	w.runPass(ctx, event.Name)
}

func (w *Watcher) runPass(ctx context.Context, cause string) {
	w.logger.Debug("new content, running backup", "path", cause)
	if err := w.trigger(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("backup pass failed", "trigger", cause, "error", err)
	}
}

// inBackupDir reports whether path lies under a backup folder of the root.
func (w *Watcher) inBackupDir(path string) bool {
	rel, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == w.skipDir {
			return true
		}
	}
	return false
}

// addRecursive subscribes dir and every directory below it, skipping
// backup folders and anything that vanished or is unreadable. Each folder
// is subscribed before its entries are read, so a file lands either in the
// walk or in a later event. sawFile reports whether the walk met any file.
func (w *Watcher) addRecursive(dir string) (sawFile bool, err error) {
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}
		if !d.IsDir() {
			sawFile = true
			return nil
		}
		if p != w.rootDir && w.inBackupDir(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			if os.IsPermission(err) || os.IsNotExist(err) {
				return nil
			}
			return err
		}
		return nil
	})
	return sawFile, err
}

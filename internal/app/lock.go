package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another sfm process holds the watch
// lock.
var ErrAlreadyRunning = errors.New("another sfm instance is already watching")

// WatchLockName is the lock file created in the data dir while a watcher
// runs.
const WatchLockName = "watch.lock"

// InstanceLock is an exclusive lock held for the life of a watching
// process.
type InstanceLock struct {
	flock *flock.Flock
}

// AcquireWatchLock takes the data dir's watch lock without blocking.
func (a *SFMApp) AcquireWatchLock() (*InstanceLock, error) {
	return acquireLock(filepath.Join(a.cfg.BaseDir, WatchLockName))
}

func acquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &InstanceLock{flock: fl}, nil
}

// Release unlocks. It is safe to call more than once.
func (l *InstanceLock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

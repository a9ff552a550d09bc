package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"reelcut/internal/paths"
)

// ErrRunActive reports that another process holds the run lock.
var ErrRunActive = errors.New("another run holds the data directory lock")

// RunLock is the process-level lock guarding a data directory.
type RunLock struct {
	path string
	lock *flock.Flock
}

// AcquireRunLock takes the run lock for reg without blocking.
func AcquireRunLock(reg paths.Registry) (*RunLock, error) {
	path := reg.RunLockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrRunActive, path)
	}
	return &RunLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

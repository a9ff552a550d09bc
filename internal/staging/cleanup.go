package staging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
	"reelcut/internal/paths"
)

// SkipReason explains why a cleanup removed nothing.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipKeep      SkipReason = "keep marker present"
	SkipRunActive SkipReason = "run in progress"
)

// CleanupResult contains the outcome of a workspace cleanup.
type CleanupResult struct {
	Removed []string
	Skipped SkipReason
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanupOptions controls Cleanup.
type CleanupOptions struct {
	Logger *slog.Logger
	// LockHeld is set by the pipeline, which already owns the run lock.
	LockHeld bool
}

// Cleanup removes every role directory under the data root. The state
// database, run lock, and keep marker in the root itself are left alone.
// Nothing is removed while the keep marker exists or, unless LockHeld is
// set, while another process holds the run lock.
func Cleanup(ctx context.Context, reg paths.Registry, opts CleanupOptions) CleanupResult {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	result := CleanupResult{}

	if fileutil.Exists(reg.KeepMarkerPath()) {
		result.Skipped = SkipKeep
		logger.Info("workspace cleanup skipped",
			logging.String("reason", string(SkipKeep)),
			logging.String("marker", reg.KeepMarkerPath()),
			logging.String(logging.FieldEventType, "staging_cleanup_skipped"),
		)
		return result
	}

	if !opts.LockHeld {
		lock, err := AcquireRunLock(reg)
		if err != nil {
			if errors.Is(err, ErrRunActive) {
				result.Skipped = SkipRunActive
				logger.Info("workspace cleanup skipped",
					logging.String("reason", string(SkipRunActive)),
					logging.String(logging.FieldEventType, "staging_cleanup_skipped"),
				)
				return result
			}
			result.Errors = append(result.Errors, CleanupError{Path: reg.RunLockPath(), Error: err})
			return result
		}
		defer func() { _ = lock.Release() }()
	}

	for _, role := range paths.Roles {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: reg.Root(), Error: ctx.Err()})
			return result
		}
		dir := reg.Dir(role)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			logger.Warn("failed to remove workspace directory",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "staging_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir)
		logger.Info("removed workspace directory",
			logging.String("path", dir),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return result
}

// ListDirectories returns the role directories that currently exist under
// the data root with their metadata.
func ListDirectories(reg paths.Registry) ([]DirInfo, error) {
	var dirs []DirInfo
	for _, role := range paths.Roles {
		dirPath := reg.Dir(role)
		info, err := os.Stat(dirPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    string(role),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

// DirInfo contains metadata about a workspace directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

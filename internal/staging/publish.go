package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
)

// Publish moves files into finalDir and returns their new paths. Empty
// entries are ignored. Moves fall back to copy-and-remove across devices.
func Publish(finalDir string, files []string, logger *slog.Logger) ([]string, error) {
	finalDir = strings.TrimSpace(finalDir)
	if finalDir == "" {
		return nil, fmt.Errorf("final directory not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return nil, fmt.Errorf("create final directory: %w", err)
	}

	moved := make([]string, 0, len(files))
	for _, src := range files {
		if strings.TrimSpace(src) == "" {
			continue
		}
		dst := filepath.Join(finalDir, filepath.Base(src))
		if err := fileutil.MoveFile(src, dst); err != nil {
			return moved, fmt.Errorf("publish %s: %w", filepath.Base(src), err)
		}
		logger.Info("published artifact",
			logging.String("source", src),
			logging.String("destination", dst),
			logging.String(logging.FieldEventType, "artifact_published"),
		)
		moved = append(moved, dst)
	}
	return moved, nil
}

package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"factcheck/internal/logging"
)

// SweepStale removes scoped directories under workDir last modified before
// olderThan ago. These are left behind only when the process is killed
// outright. It returns the number of directories removed.
func SweepStale(workDir string, olderThan time.Duration, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read work dir: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), scopedDirStem) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(workDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Info("stale scoped directories removed",
			logging.Int("count", removed),
			logging.String("work_dir", workDir),
		)
	}
	return removed, errors.Join(errs...)
}

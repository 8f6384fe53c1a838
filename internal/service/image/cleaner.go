package image

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Cleaner удаляет забытые временные снимки (процесс упал посреди прогона).
type Cleaner struct {
	logger *zap.SugaredLogger
}

func NewCleaner(logger *zap.SugaredLogger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cleaner{logger: logger}
}

// Clean удаляет из dir файлы по маске pattern старше ttl и возвращает число удалённых.
// В режиме debug ничего не делает.
func (c *Cleaner) Clean(dir, pattern string, ttl time.Duration, debug bool) int {
	if debug {
		c.logger.Infow("DEBUG: stale capture cleanup disabled", "dir", dir, "ttl", ttl.String())
		return 0
	}
	if dir == "" {
		dir = os.TempDir()
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		c.logger.Warnw("Bad cleanup pattern", "pattern", pattern, "error", err)
		return 0
	}

	deadline := time.Now().Add(-ttl)
	removed := 0
	for _, full := range matches {
		fi, statErr := os.Lstat(full)
		if statErr != nil {
			if !errors.Is(statErr, os.ErrNotExist) {
				c.logger.Warnw("Failed to stat file during cleanup", "path", full, "error", statErr)
			}
			continue
		}
		if !fi.Mode().IsRegular() || !fi.ModTime().Before(deadline) {
			continue
		}
		if err := os.Remove(full); err != nil {
			c.logger.Warnw("Failed to remove stale file", "path", full, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		c.logger.Infow("Stale captures removed", "dir", dir, "removed", removed)
	}
	return removed
}

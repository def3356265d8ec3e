// Package cleanup sweeps the staging directory for files left behind by
// crashed or interrupted uploads.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"filevault/pkg/logger"
)

const defaultSweepInterval = 5 * time.Minute

// TempCleaner periodically deletes staged files older than maxAge. Live
// uploads keep their staging file fresh enough to survive a sweep.
type TempCleaner struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	log      *logger.Logger
}

func NewTempCleaner(dir string, maxAge time.Duration, log *logger.Logger) *TempCleaner {
	return &TempCleaner{
		dir:      dir,
		maxAge:   maxAge,
		interval: defaultSweepInterval,
		log:      log,
	}
}

// Sweep deletes stale files and returns how many were removed.
func (t *TempCleaner) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < t.maxAge {
			continue
		}
		path := filepath.Join(t.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			t.log.Warnf("removing stale temp file %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (t *TempCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := t.Sweep(time.Now())
			if err != nil {
				t.log.Errorf("temp sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				t.log.Infof("temp sweep removed %d stale files", removed)
			}
		}
	}
}

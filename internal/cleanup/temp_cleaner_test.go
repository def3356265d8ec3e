package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/pkg/logger"
)

func TestTempCleanerSweep(t *testing.T) {
	t.Run("removes only stale files", func(t *testing.T) {
		dir := t.TempDir()
		stale := filepath.Join(dir, "stale")
		fresh := filepath.Join(dir, "fresh")
		require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

		old := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(stale, old, old))

		c := NewTempCleaner(dir, time.Hour, logger.NewNop())
		removed, err := c.Sweep(time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(fresh)
		assert.NoError(t, err)
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		c := NewTempCleaner(filepath.Join(t.TempDir(), "nope"), time.Hour, logger.NewNop())
		removed, err := c.Sweep(time.Now())
		require.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("subdirectories are left alone", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "keep")
		require.NoError(t, os.Mkdir(sub, 0o755))
		old := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(sub, old, old))

		c := NewTempCleaner(dir, time.Hour, logger.NewNop())
		removed, err := c.Sweep(time.Now())
		require.NoError(t, err)
		assert.Zero(t, removed)

		_, err = os.Stat(sub)
		assert.NoError(t, err)
	})
}

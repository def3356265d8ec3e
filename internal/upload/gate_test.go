package upload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	t.Run("limits in-flight holders", func(t *testing.T) {
		g := NewGate(2)
		ctx := context.Background()

		s1, err := g.Acquire(ctx)
		require.NoError(t, err)
		s2, err := g.Acquire(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, g.InFlight())

		blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = g.Acquire(blocked)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		s1.Release()
		s3, err := g.Acquire(ctx)
		require.NoError(t, err)

		s2.Release()
		s3.Release()
		assert.Equal(t, 0, g.InFlight())
	})

	t.Run("release is idempotent", func(t *testing.T) {
		g := NewGate(1)
		s, err := g.Acquire(context.Background())
		require.NoError(t, err)

		s.Release()
		s.Release()
		s.Release()
		assert.Equal(t, 0, g.InFlight())

		// the slot freed exactly once, so a new acquire still succeeds
		s2, err := g.Acquire(context.Background())
		require.NoError(t, err)
		s2.Release()
	})

	t.Run("cancelled context unblocks waiter", func(t *testing.T) {
		g := NewGate(1)
		s, err := g.Acquire(context.Background())
		require.NoError(t, err)
		defer s.Release()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := g.Acquire(ctx)
			done <- err
		}()
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("waiter did not unblock on cancel")
		}
	})
}

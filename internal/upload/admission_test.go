package upload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionController(t *testing.T) {
	t.Run("rejects beyond the ceiling", func(t *testing.T) {
		a := NewAdmissionController(2)

		assert.True(t, a.TryAdmit())
		assert.True(t, a.TryAdmit())
		assert.False(t, a.TryAdmit())

		a.Release()
		assert.True(t, a.TryAdmit())
		assert.Equal(t, 2, a.Active())
	})

	t.Run("release makes room again", func(t *testing.T) {
		a := NewAdmissionController(1)
		assert.True(t, a.TryAdmit())
		assert.False(t, a.TryAdmit())
		a.Release()
		assert.True(t, a.TryAdmit())
	})

	t.Run("concurrent admits never exceed the limit", func(t *testing.T) {
		const limit = 2
		a := NewAdmissionController(limit)

		var mu sync.Mutex
		admitted := 0
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if a.TryAdmit() {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, limit, admitted)
		assert.Equal(t, limit, a.Active())
	})
}

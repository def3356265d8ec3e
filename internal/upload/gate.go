package upload

import (
	"context"
	"sync"
)

// Gate bounds how many part uploads may be in flight at once. Acquire blocks
// until a slot frees up; each Slot releases at most once, so deferred cleanup
// paths may call Release unconditionally.
type Gate struct {
	slots chan struct{}
}

// Slot is an admission ticket held while one part upload is in flight.
type Slot struct {
	gate *Gate
	once sync.Once
}

func NewGate(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is free or the context is cancelled.
func (g *Gate) Acquire(ctx context.Context) (*Slot, error) {
	select {
	case g.slots <- struct{}{}:
		return &Slot{gate: g}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release frees the slot. Idempotent.
func (s *Slot) Release() {
	s.once.Do(func() {
		<-s.gate.slots
	})
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int {
	return len(g.slots)
}

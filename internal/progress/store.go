package progress

import (
	"context"
	"time"
)

// Store is the shared persistence point for progress records. A single-process
// deployment can use MemoryStore; multi-process deployments need RedisStore so
// any worker can answer a status poll for a session driven by another worker.
type Store interface {
	// Get returns the record for id, or nil when unknown or expired.
	Get(ctx context.Context, id string) (*Record, error)
	// Set writes the whole record, last writer wins.
	Set(ctx context.Context, r *Record) error
	// Delete removes the record. Removing an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns every live record.
	List(ctx context.Context) ([]Record, error)
	// Cleanup drops expired records and records idle longer than olderThan,
	// returning how many were removed.
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
}

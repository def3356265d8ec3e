package progress

import (
	"context"
	"math"
	"time"

	"filevault/pkg/logger"
)

// Tracker is the write-side API over a Store. One orchestrator drives one
// session's updates sequentially, so percentage never decreases while the
// session is uploading.
type Tracker struct {
	store Store
	log   *logger.Logger
}

func NewTracker(store Store, log *logger.Logger) *Tracker {
	return &Tracker{store: store, log: log}
}

// Start creates the record with status pending and zero progress.
func (t *Tracker) Start(ctx context.Context, id, fileName string, totalSize int64) {
	now := time.Now()
	r := &Record{
		SessionID: id,
		FileName:  fileName,
		TotalSize: totalSize,
		Status:    StatusPending,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Set(ctx, r); err != nil {
		t.log.Errorf("progress: start tracking %s: %v", id, err)
	}
}

// Update recomputes the derived fields from uploadedSize and stores the
// record. Updates for unknown or expired sessions are silently dropped so a
// late writer never crashes on an expired record.
func (t *Tracker) Update(ctx context.Context, id string, uploadedSize int64, status Status, currentPart, totalParts int) {
	r, err := t.store.Get(ctx, id)
	if err != nil {
		t.log.Errorf("progress: update %s: %v", id, err)
		return
	}
	if r == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(r.StartedAt).Seconds()

	r.UploadedSize = uploadedSize
	r.Percentage = percentage(uploadedSize, r.TotalSize)
	if elapsed > 0 {
		r.Speed = float64(uploadedSize) / elapsed
	}
	if r.Speed > 0 {
		r.ETASeconds = float64(r.TotalSize-uploadedSize) / r.Speed
	} else {
		r.ETASeconds = 0
	}
	if status != "" {
		r.Status = status
	}
	if currentPart > 0 && totalParts > 0 {
		r.CurrentPart = currentPart
		r.TotalParts = totalParts
	}
	r.UpdatedAt = now

	if err := t.store.Set(ctx, r); err != nil {
		t.log.Errorf("progress: update %s: %v", id, err)
	}
}

// Complete marks the session done at 100% and schedules its removal.
func (t *Tracker) Complete(ctx context.Context, id string) {
	r, err := t.store.Get(ctx, id)
	if err != nil || r == nil {
		return
	}
	now := time.Now()
	r.Status = StatusCompleted
	r.UploadedSize = r.TotalSize
	r.Percentage = 100
	r.UpdatedAt = now
	r.ExpiresAt = now.Add(CompletedRetention)
	if err := t.store.Set(ctx, r); err != nil {
		t.log.Errorf("progress: complete %s: %v", id, err)
	}
}

// Fail records the terminal failure with a human-readable reason.
func (t *Tracker) Fail(ctx context.Context, id, errMsg string) {
	r, err := t.store.Get(ctx, id)
	if err != nil || r == nil {
		return
	}
	now := time.Now()
	r.Status = StatusFailed
	r.Error = errMsg
	r.UpdatedAt = now
	r.ExpiresAt = now.Add(FailedRetention)
	if err := t.store.Set(ctx, r); err != nil {
		t.log.Errorf("progress: fail %s: %v", id, err)
	}
}

// Get returns the record or nil when unknown or expired.
func (t *Tracker) Get(ctx context.Context, id string) *Record {
	r, err := t.store.Get(ctx, id)
	if err != nil {
		t.log.Errorf("progress: get %s: %v", id, err)
		return nil
	}
	return r
}

// All returns every live record visible to this store.
func (t *Tracker) All(ctx context.Context) []Record {
	records, err := t.store.List(ctx)
	if err != nil {
		t.log.Errorf("progress: list: %v", err)
		return nil
	}
	return records
}

// Remove deletes a record immediately.
func (t *Tracker) Remove(ctx context.Context, id string) {
	if err := t.store.Delete(ctx, id); err != nil {
		t.log.Errorf("progress: remove %s: %v", id, err)
	}
}

// Cleanup drops expired and idle records.
func (t *Tracker) Cleanup(ctx context.Context) {
	removed, err := t.store.Cleanup(ctx, InactivityWindow)
	if err != nil {
		t.log.Errorf("progress: cleanup: %v", err)
		return
	}
	if removed > 0 {
		t.log.Infof("progress: cleaned up %d stale records", removed)
	}
}

// Run drives periodic cleanup until the context is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Cleanup(ctx)
		}
	}
}

func percentage(uploaded, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(uploaded) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

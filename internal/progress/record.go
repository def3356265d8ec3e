// Package progress tracks upload progress records that must stay visible
// across worker processes. Records live in a Store keyed by session id;
// the Tracker derives percentage, speed, and ETA on each update.
package progress

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusUploading  Status = "uploading"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Retention windows. Terminal records linger briefly so late pollers can read
// the final state; anything untouched past the inactivity window is dropped
// unconditionally.
const (
	CompletedRetention = 30 * time.Second
	FailedRetention    = 60 * time.Second
	InactivityWindow   = 5 * time.Minute
	CleanupInterval    = time.Minute
)

// Record is the shared, cross-process visible state of one upload session.
// One orchestrator owns one session id, so writes are whole-record
// last-writer-wins with no cross-process lock.
type Record struct {
	SessionID    string    `json:"session_id"`
	FileName     string    `json:"file_name"`
	TotalSize    int64     `json:"total_size"`
	UploadedSize int64     `json:"uploaded_size"`
	Percentage   int       `json:"percentage"`
	Status       Status    `json:"status"`
	CurrentPart  int       `json:"current_part,omitempty"`
	TotalParts   int       `json:"total_parts,omitempty"`
	Speed        float64   `json:"speed,omitempty"`
	ETASeconds   float64   `json:"estimated_time_remaining,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Terminal reports whether the record reached a final status.
func (r *Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Expired reports whether the record's retention deadline has passed.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

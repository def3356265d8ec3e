package httpdto

import (
	"time"

	"filevault/internal/progress"
)

// ProgressResponse is the wire shape of one upload session's progress.
type ProgressResponse struct {
	SessionID    string    `json:"session_id"`
	FileName     string    `json:"file_name"`
	TotalSize    int64     `json:"total_size"`
	UploadedSize int64     `json:"uploaded_size"`
	Percentage   int       `json:"percentage"`
	Status       string    `json:"status"`
	CurrentPart  int       `json:"current_part,omitempty"`
	TotalParts   int       `json:"total_parts,omitempty"`
	Speed        float64   `json:"speed,omitempty"`
	ETASeconds   float64   `json:"estimated_time_remaining,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Error        string    `json:"error,omitempty"`
}

func NewProgressResponse(r *progress.Record) ProgressResponse {
	return ProgressResponse{
		SessionID:    r.SessionID,
		FileName:     r.FileName,
		TotalSize:    r.TotalSize,
		UploadedSize: r.UploadedSize,
		Percentage:   r.Percentage,
		Status:       string(r.Status),
		CurrentPart:  r.CurrentPart,
		TotalParts:   r.TotalParts,
		Speed:        r.Speed,
		ETASeconds:   r.ETASeconds,
		StartedAt:    r.StartedAt,
		UpdatedAt:    r.UpdatedAt,
		Error:        r.Error,
	}
}

func NewProgressListResponse(records []progress.Record) []ProgressResponse {
	out := make([]ProgressResponse, 0, len(records))
	for i := range records {
		out = append(out, NewProgressResponse(&records[i]))
	}
	return out
}

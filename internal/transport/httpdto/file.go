package httpdto

import (
	"time"

	"filevault/internal/domain/file"
)

// FileResponse is the wire shape of one file metadata record.
type FileResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	SizeBytes int64             `json:"size_bytes"`
	MimeType  string            `json:"mime_type"`
	Category  string            `json:"category"`
	Status    string            `json:"status"`
	URL       string            `json:"url,omitempty"`
	Metadata  file.Metadata     `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewFileResponse(f *file.File) FileResponse {
	return FileResponse{
		ID:        f.ID.String(),
		Name:      f.Name,
		SizeBytes: f.SizeBytes,
		MimeType:  f.MimeType,
		Category:  string(f.Category),
		Status:    string(f.Status),
		URL:       f.URL,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func NewFileListResponse(files []*file.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, NewFileResponse(f))
	}
	return out
}

package file

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	filevault_errors "filevault/pkg/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusFailed    Status = "failed"
	StatusDeleted   Status = "deleted"
)

// Metadata carries caller-supplied descriptive fields stored alongside the object.
type Metadata struct {
	UploadedBy  string            `json:"uploaded_by,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// File is the metadata record for one uploaded object.
type File struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	Category   Category  `json:"category"`
	StorageKey string    `json:"storage_key"`
	Status     Status    `json:"status"`
	Metadata   Metadata  `json:"metadata"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New creates a pending file record. The storage key is derived from the name
// and category so objects land in per-category prefixes.
func New(name string, sizeBytes int64, mimeType string, metadata Metadata) *File {
	now := time.Now()
	category := CategoryForMimeType(mimeType)
	return &File{
		ID:         uuid.New(),
		Name:       name,
		SizeBytes:  sizeBytes,
		MimeType:   mimeType,
		Category:   category,
		StorageKey: BuildObjectKey(name, category),
		Status:     StatusPending,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkUploading transitions pending -> uploading.
func (f *File) MarkUploading() error {
	if f.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", filevault_errors.ErrInvalidTransition, f.Status, StatusUploading)
	}
	f.Status = StatusUploading
	f.UpdatedAt = time.Now()
	return nil
}

// MarkUploaded transitions uploading -> uploaded and records the object URL.
func (f *File) MarkUploaded(url string) error {
	if f.Status != StatusUploading {
		return fmt.Errorf("%w: %s -> %s", filevault_errors.ErrInvalidTransition, f.Status, StatusUploaded)
	}
	f.Status = StatusUploaded
	f.URL = url
	f.UpdatedAt = time.Now()
	return nil
}

// MarkFailed is valid from any non-terminal status.
func (f *File) MarkFailed() error {
	if f.Status == StatusUploaded || f.Status == StatusDeleted {
		return fmt.Errorf("%w: %s -> %s", filevault_errors.ErrInvalidTransition, f.Status, StatusFailed)
	}
	f.Status = StatusFailed
	f.UpdatedAt = time.Now()
	return nil
}

// MarkDeleted clears the URL and tombstones the record.
func (f *File) MarkDeleted() error {
	if f.Status == StatusDeleted {
		return filevault_errors.ErrAlreadyDeleted
	}
	f.Status = StatusDeleted
	f.URL = ""
	f.UpdatedAt = time.Now()
	return nil
}

// CanBeDeleted reports whether the file is in a status that allows deletion.
func (f *File) CanBeDeleted() bool {
	return f.Status == StatusUploaded || f.Status == StatusFailed
}

func (f *File) IsUploadComplete() bool {
	return f.Status == StatusUploaded
}

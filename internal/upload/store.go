package upload

import (
	"context"
	"io"

	"filevault/internal/storage"
)

// ObjectStore is the slice of the object storage client the orchestrator
// needs. Narrowed to an interface so tests can drive the multipart state
// machine without a bucket.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata map[string]string) (string, error)
	InitiateMultipart(ctx context.Context, key, contentType string, metadata map[string]string) (string, error)
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader, size int64) (string, error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) (string, error)
	AbortMultipart(ctx context.Context, key, uploadID string) error
	ObjectURL(key string) string
}

var _ ObjectStore = (*storage.Client)(nil)

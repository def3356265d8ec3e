package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"filevault/internal/storage"
	"filevault/pkg/logger"
)

const defaultMaxAttempts = 3

// PartUploader pushes a single byte range of a staged file as one multipart
// part, retrying transient failures with a fresh reader per attempt.
type PartUploader struct {
	store       ObjectStore
	maxAttempts int
	backoff     time.Duration
	log         *logger.Logger
}

func NewPartUploader(store ObjectStore, log *logger.Logger) *PartUploader {
	return &PartUploader{
		store:       store,
		maxAttempts: defaultMaxAttempts,
		backoff:     500 * time.Millisecond,
		log:         log,
	}
}

// Upload sends the bytes of r from the staged file at filePath. Each attempt
// reopens the file and seeks to the range start so a half-read body from a
// failed attempt never leaks into the next one.
func (u *PartUploader) Upload(ctx context.Context, filePath, key, uploadID string, r PartRange) (storage.CompletedPart, error) {
	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return storage.CompletedPart{}, &PartUploadError{PartNumber: r.Number, Err: ctx.Err()}
			case <-time.After(u.backoff * time.Duration(attempt-1)):
			}
		}

		etag, err := u.uploadOnce(ctx, filePath, key, uploadID, r)
		if err == nil {
			return storage.CompletedPart{PartNumber: r.Number, ETag: etag}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		u.log.Warnf("part %d of %s attempt %d/%d failed: %v", r.Number, key, attempt, u.maxAttempts, err)
	}
	return storage.CompletedPart{}, &PartUploadError{PartNumber: r.Number, Err: lastErr}
}

func (u *PartUploader) uploadOnce(ctx context.Context, filePath, key, uploadID string, r PartRange) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	section := io.NewSectionReader(f, r.Start, r.Len())
	return u.store.UploadPart(ctx, key, uploadID, r.Number, section, r.Len())
}

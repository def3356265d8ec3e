package upload

import (
	"errors"
	"fmt"
)

// Sentinel errors for plan and admission failures.
var (
	ErrInvalidSize = errors.New("upload: invalid size")
	ErrAdmission   = errors.New("upload: too many concurrent large uploads")
)

// SessionInitError means the backend refused to open a multipart session.
// Terminal for the attempt; no abort is needed since no session token exists.
type SessionInitError struct {
	Key string
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("upload: initiating multipart session for %s: %v", e.Key, e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

// PartUploadError is a single part's failure after retries are exhausted.
// The part number is carried for diagnostics.
type PartUploadError struct {
	PartNumber int32
	Err        error
}

func (e *PartUploadError) Error() string {
	return fmt.Sprintf("upload: part %d failed: %v", e.PartNumber, e.Err)
}

func (e *PartUploadError) Unwrap() error { return e.Err }

// CompletionError means the backend rejected the final part assembly.
type CompletionError struct {
	Key string
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("upload: completing multipart session for %s: %v", e.Key, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

package filevault_errors

import "errors"

// Common errors
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrTooLarge             = errors.New("file too large")
	ErrValidationFailed     = errors.New("file validation failed")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrRateLimited          = errors.New("rate limited")
	ErrTooManyLargeUploads  = errors.New("too many concurrent large uploads")
	ErrUploadFailed         = errors.New("upload failed")
	ErrServiceUnavailable   = errors.New("service unavailable")
	ErrAlreadyDeleted       = errors.New("file already deleted")
	ErrNotDeletable         = errors.New("file cannot be deleted in its current status")
)

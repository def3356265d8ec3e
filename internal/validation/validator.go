// Package validation checks uploaded files before they reach object storage:
// size caps, MIME allow lists, filename sanitization, and magic byte
// signature checks on types that carry a stable signature.
package validation

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"filevault/internal/domain/file"
	"filevault/pkg/logger"
)

// SampleSize is how many leading bytes the handler must capture for
// signature checks. Larger than any signature we match on.
const SampleSize = 8 * 1024

// Result carries the validation verdict plus the sanitized name a caller
// must use in place of the client-supplied one.
type Result struct {
	Valid         bool
	Errors        []string
	SanitizedName string
}

// Validator applies the upload acceptance policy.
type Validator struct {
	maxFileSize int64
	log         *logger.Logger
}

func New(maxFileSize int64, log *logger.Logger) *Validator {
	return &Validator{maxFileSize: maxFileSize, log: log}
}

// signatures maps MIME types to their accepted magic byte prefixes. Types
// absent from the table skip the signature check entirely.
var signatures = map[string][][]byte{
	"image/jpeg":      {{0xFF, 0xD8, 0xFF}},
	"image/png":       {{0x89, 0x50, 0x4E, 0x47}},
	"image/gif":       {{0x47, 0x49, 0x46, 0x38}},
	"application/pdf": {{0x25, 0x50, 0x44, 0x46}},
}

// Validate inspects the declared metadata and the leading sample bytes.
// Mismatched signatures on signed types block the upload; for video the
// sniffed type is only logged, since container formats are too varied for a
// reliable blocklist.
func (v *Validator) Validate(sample []byte, originalName, mimeType string, size int64) Result {
	var errs []string

	if size <= 0 {
		errs = append(errs, "file size must be greater than 0")
	}
	if size > v.maxFileSize {
		errs = append(errs, fmt.Sprintf("file size %d exceeds maximum allowed size of %d bytes", size, v.maxFileSize))
	}

	if !file.IsAllowedMimeType(mimeType) {
		errs = append(errs, fmt.Sprintf("MIME type %q is not allowed", mimeType))
	}

	sanitized := SanitizeFileName(originalName)

	if sigErr := checkSignature(sample, mimeType); sigErr != "" {
		errs = append(errs, sigErr)
	}

	if strings.HasPrefix(mimeType, "video/") && len(sample) > 0 {
		detected := mimetype.Detect(sample)
		if !strings.HasPrefix(detected.String(), "video/") {
			v.log.Warnf("declared %s but content sniffs as %s for %q", mimeType, detected.String(), sanitized)
		}
	}

	return Result{
		Valid:         len(errs) == 0,
		Errors:        errs,
		SanitizedName: sanitized,
	}
}

func checkSignature(sample []byte, mimeType string) string {
	expected, ok := signatures[mimeType]
	if !ok {
		return ""
	}
	if len(sample) < 4 {
		return "file is too small to validate"
	}
	for _, sig := range expected {
		if bytes.HasPrefix(sample, sig) {
			return ""
		}
	}
	return fmt.Sprintf("file signature does not match MIME type %q", mimeType)
}

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFileName strips path and control characters, trims leading and
// trailing dots, and caps the length. Never returns an empty string.
func SanitizeFileName(name string) string {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	s = strings.TrimLeft(s, ".")
	s = strings.TrimRight(s, ".")
	if len(s) > 255 {
		s = s[:255]
	}
	if s == "" {
		return "unnamed_file"
	}
	return s
}

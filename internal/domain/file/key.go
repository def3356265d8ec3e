package file

import (
	"regexp"
	"strings"
	"time"
)

const maxKeyLength = 1024

var keyUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// BuildObjectKey produces a storage key of the form
// "<category>/<timestamp>-<sanitized name>". Timestamps are RFC3339 with colons
// and dots replaced so the key stays portable across S3-compatible backends.
func BuildObjectKey(fileName string, category Category) string {
	timestamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format(time.RFC3339Nano))
	sanitized := keyUnsafeChars.ReplaceAllString(fileName, "_")
	key := string(category) + "/" + timestamp + "-" + sanitized
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	return key
}

package file

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filevault_errors "filevault/pkg/errors"
)

func TestStatusTransitions(t *testing.T) {
	t.Run("happy path pending to uploaded", func(t *testing.T) {
		f := New("video.mp4", 1024, "video/mp4", Metadata{})
		assert.Equal(t, StatusPending, f.Status)

		require.NoError(t, f.MarkUploading())
		assert.Equal(t, StatusUploading, f.Status)

		require.NoError(t, f.MarkUploaded("https://bucket.s3.amazonaws.com/videos/video.mp4"))
		assert.Equal(t, StatusUploaded, f.Status)
		assert.True(t, f.IsUploadComplete())
		assert.NotEmpty(t, f.URL)
	})

	t.Run("only pending can start uploading", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		require.NoError(t, f.MarkUploading())
		err := f.MarkUploading()
		assert.ErrorIs(t, err, filevault_errors.ErrInvalidTransition)
	})

	t.Run("only uploading can complete", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		err := f.MarkUploaded("https://example.com/doc.pdf")
		assert.ErrorIs(t, err, filevault_errors.ErrInvalidTransition)
	})

	t.Run("uploaded file cannot be marked failed", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		require.NoError(t, f.MarkUploading())
		require.NoError(t, f.MarkUploaded("https://example.com/doc.pdf"))
		assert.ErrorIs(t, f.MarkFailed(), filevault_errors.ErrInvalidTransition)
	})

	t.Run("pending and uploading files can fail", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		require.NoError(t, f.MarkFailed())
		assert.Equal(t, StatusFailed, f.Status)
	})

	t.Run("delete clears url and is not repeatable", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		require.NoError(t, f.MarkUploading())
		require.NoError(t, f.MarkUploaded("https://example.com/doc.pdf"))
		require.NoError(t, f.MarkDeleted())
		assert.Empty(t, f.URL)
		assert.ErrorIs(t, f.MarkDeleted(), filevault_errors.ErrAlreadyDeleted)
	})

	t.Run("deletable statuses", func(t *testing.T) {
		f := New("doc.pdf", 10, "application/pdf", Metadata{})
		assert.False(t, f.CanBeDeleted())
		require.NoError(t, f.MarkFailed())
		assert.True(t, f.CanBeDeleted())
	})
}

func TestCategoryForMimeType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     Category
	}{
		{"image/png", CategoryImages},
		{"image/jpeg", CategoryImages},
		{"application/pdf", CategoryDocuments},
		{"text/plain", CategoryDocuments},
		{"video/mp4", CategoryVideos},
		{"video/quicktime", CategoryVideos},
		{"audio/mpeg", CategoryAudio},
		{"application/zip", CategoryArchives},
		{"application/octet-stream", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryForMimeType(tt.mimeType))
		})
	}
}

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("my video (final).mp4", CategoryVideos)

	assert.True(t, strings.HasPrefix(key, "videos/"))
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")
	assert.False(t, strings.HasSuffix(key, "/"))
	assert.LessOrEqual(t, len(key), 1024)
	// sanitized original name survives at the tail
	assert.True(t, strings.HasSuffix(key, "my_video__final_.mp4"))
}

func TestAllowedMimeTypes(t *testing.T) {
	all := AllowedMimeTypes()
	assert.Contains(t, all, "video/mp4")
	assert.Contains(t, all, "image/png")
	assert.Contains(t, all, "application/zip")
	assert.NotContains(t, all, "application/octet-stream")
}

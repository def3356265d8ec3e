package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/config"
	"filevault/internal/domain/file"
	"filevault/internal/progress"
	"filevault/internal/repository"
	"filevault/internal/upload"
	"filevault/internal/validation"
	filevault_errors "filevault/pkg/errors"
	"filevault/pkg/logger"
)

type mockUploader struct {
	uploadFunc func(ctx context.Context, req upload.Request) (upload.Result, error)
}

func (m *mockUploader) Upload(ctx context.Context, req upload.Request) (upload.Result, error) {
	return m.uploadFunc(ctx, req)
}

type mockDeleter struct {
	deleteFunc func(ctx context.Context, key string) error
	calls      []string
}

func (m *mockDeleter) DeleteObject(ctx context.Context, key string) error {
	m.calls = append(m.calls, key)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}

type serviceFixture struct {
	service  *FileService
	repo     *repository.InMemoryFileRepository
	tracker  *progress.Tracker
	uploader *mockUploader
	deleter  *mockDeleter
}

func newFixture(uploader *mockUploader) *serviceFixture {
	log := logger.NewNop()
	repo := repository.NewInMemoryFileRepository()
	tracker := progress.NewTracker(progress.NewMemoryStore(), log)
	deleter := &mockDeleter{}
	cfg := config.UploadConfig{
		MaxFileSize:             100 * 1024 * 1024,
		LargeFileThreshold:      10 * 1024 * 1024,
		PartSize:                5 * 1024 * 1024,
		PartConcurrency:         2,
		MaxConcurrentLargeFiles: 1,
	}
	svc := NewFileService(
		repo,
		validation.New(cfg.MaxFileSize, log),
		uploader,
		deleter,
		upload.NewAdmissionController(cfg.MaxConcurrentLargeFiles),
		tracker,
		cfg,
		log,
	)
	return &serviceFixture{service: svc, repo: repo, tracker: tracker, uploader: uploader, deleter: deleter}
}

func stageTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

var jpegSample = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)

func smallInput(t *testing.T) UploadInput {
	return UploadInput{
		TempPath:     stageTemp(t, jpegSample),
		Sample:       jpegSample,
		OriginalName: "photo.jpg",
		MimeType:     "image/jpeg",
		Size:         int64(len(jpegSample)),
	}
}

func TestFileServiceUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("successful upload marks record and removes temp file", func(t *testing.T) {
		fix := newFixture(&mockUploader{
			uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
				return upload.Result{Key: req.Key, URL: "https://cdn.test/" + req.Key, ETag: "e1"}, nil
			},
		})
		in := smallInput(t)

		f, err := fix.service.Upload(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, file.StatusUploaded, f.Status)
		assert.NotEmpty(t, f.URL)

		stored, err := fix.repo.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, file.StatusUploaded, stored.Status)

		_, statErr := os.Stat(in.TempPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("validation failure never reaches the uploader", func(t *testing.T) {
		called := false
		fix := newFixture(&mockUploader{
			uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
				called = true
				return upload.Result{}, nil
			},
		})
		in := smallInput(t)
		in.MimeType = "application/x-msdownload"

		_, err := fix.service.Upload(ctx, in)
		assert.ErrorIs(t, err, filevault_errors.ErrValidationFailed)
		assert.False(t, called)

		_, statErr := os.Stat(in.TempPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("pipeline failure yields a generic error and a failed record", func(t *testing.T) {
		fix := newFixture(&mockUploader{
			uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
				return upload.Result{}, errors.New("AccessDenied: bucket policy forbids s3:PutObject on arn:aws:s3:::prod-bucket")
			},
		})
		in := smallInput(t)

		_, err := fix.service.Upload(ctx, in)
		require.ErrorIs(t, err, filevault_errors.ErrUploadFailed)
		// backend detail must not leak to the caller
		assert.NotContains(t, err.Error(), "AccessDenied")
		assert.NotContains(t, err.Error(), "prod-bucket")

		files, listErr := fix.repo.List(ctx, 10, 0)
		require.NoError(t, listErr)
		require.Len(t, files, 1)
		assert.Equal(t, file.StatusFailed, files[0].Status)

		_, statErr := os.Stat(in.TempPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("large uploads beyond the ceiling are rejected", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		fix := newFixture(&mockUploader{
			uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
				close(started)
				<-release
				return upload.Result{Key: req.Key, URL: "u", ETag: "e"}, nil
			},
		})

		large := UploadInput{
			TempPath:     stageTemp(t, jpegSample),
			Sample:       jpegSample,
			OriginalName: "big.jpg",
			MimeType:     "image/jpeg",
			Size:         20 * 1024 * 1024,
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fix.service.Upload(ctx, large)
			assert.NoError(t, err)
		}()
		<-started

		second := UploadInput{
			TempPath:     stageTemp(t, jpegSample),
			Sample:       jpegSample,
			OriginalName: "big2.jpg",
			MimeType:     "image/jpeg",
			Size:         20 * 1024 * 1024,
		}
		_, err := fix.service.Upload(ctx, second)
		assert.ErrorIs(t, err, filevault_errors.ErrTooManyLargeUploads)

		close(release)
		wg.Wait()

		// slot freed, another large upload is admitted
		third := UploadInput{
			TempPath:     stageTemp(t, jpegSample),
			Sample:       jpegSample,
			OriginalName: "big3.jpg",
			MimeType:     "image/jpeg",
			Size:         20 * 1024 * 1024,
		}
		fix.uploader.uploadFunc = func(ctx context.Context, req upload.Request) (upload.Result, error) {
			return upload.Result{Key: req.Key, URL: "u", ETag: "e"}, nil
		}
		_, err = fix.service.Upload(ctx, third)
		assert.NoError(t, err)
	})
}

func TestFileServiceDelete(t *testing.T) {
	ctx := context.Background()

	uploaded := func(t *testing.T, fix *serviceFixture) *file.File {
		t.Helper()
		f, err := fix.service.Upload(ctx, smallInput(t))
		require.NoError(t, err)
		return f
	}

	okUploader := &mockUploader{
		uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
			return upload.Result{Key: req.Key, URL: "https://cdn.test/" + req.Key, ETag: "e"}, nil
		},
	}

	t.Run("deletes object and tombstones record", func(t *testing.T) {
		fix := newFixture(okUploader)
		f := uploaded(t, fix)

		require.NoError(t, fix.service.Delete(ctx, f.ID))
		assert.Equal(t, []string{f.StorageKey}, fix.deleter.calls)

		got, err := fix.repo.GetByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, file.StatusDeleted, got.Status)
		assert.Empty(t, got.URL)
	})

	t.Run("second delete conflicts", func(t *testing.T) {
		fix := newFixture(okUploader)
		f := uploaded(t, fix)

		require.NoError(t, fix.service.Delete(ctx, f.ID))
		assert.ErrorIs(t, fix.service.Delete(ctx, f.ID), filevault_errors.ErrAlreadyDeleted)
	})

	t.Run("in-flight record is not deletable", func(t *testing.T) {
		fix := newFixture(okUploader)
		f := file.New("p.jpg", 10, "image/jpeg", file.Metadata{})
		require.NoError(t, fix.repo.Save(ctx, f))

		assert.ErrorIs(t, fix.service.Delete(ctx, f.ID), filevault_errors.ErrNotDeletable)
		assert.Empty(t, fix.deleter.calls)
	})

	t.Run("failed record deletes without touching storage", func(t *testing.T) {
		fix := newFixture(okUploader)
		f := file.New("f.jpg", 10, "image/jpeg", file.Metadata{})
		require.NoError(t, fix.repo.Save(ctx, f))
		require.NoError(t, f.MarkFailed())
		require.NoError(t, fix.repo.Update(ctx, f))

		require.NoError(t, fix.service.Delete(ctx, f.ID))
		assert.Empty(t, fix.deleter.calls)
	})
}

func TestFileServiceList(t *testing.T) {
	ctx := context.Background()
	okUploader := &mockUploader{
		uploadFunc: func(ctx context.Context, req upload.Request) (upload.Result, error) {
			return upload.Result{Key: req.Key, URL: "u", ETag: "e"}, nil
		},
	}

	t.Run("rejects unknown category", func(t *testing.T) {
		fix := newFixture(okUploader)
		_, err := fix.service.List(ctx, "selfies", 10, 0)
		assert.ErrorIs(t, err, filevault_errors.ErrInvalidInput)
	})

	t.Run("filters by category", func(t *testing.T) {
		fix := newFixture(okUploader)
		_, err := fix.service.Upload(ctx, smallInput(t))
		require.NoError(t, err)

		images, err := fix.service.List(ctx, "images", 10, 0)
		require.NoError(t, err)
		assert.Len(t, images, 1)

		docs, err := fix.service.List(ctx, "documents", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

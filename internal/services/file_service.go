// Package services wires the domain model to storage, validation, and the
// upload pipeline.
package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"filevault/config"
	"filevault/internal/domain/file"
	"filevault/internal/progress"
	"filevault/internal/repository"
	"filevault/internal/upload"
	"filevault/internal/validation"
	filevault_errors "filevault/pkg/errors"
	"filevault/pkg/logger"
)

// Uploader is the upload pipeline entry point the service drives.
type Uploader interface {
	Upload(ctx context.Context, req upload.Request) (upload.Result, error)
}

// ObjectDeleter removes stored objects when their metadata record is deleted.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// UploadInput is one staged upload as received by the transport layer. The
// file body is already on local disk at TempPath; Sample holds its leading
// bytes for signature checks.
type UploadInput struct {
	TempPath     string
	Sample       []byte
	OriginalName string
	MimeType     string
	Size         int64
	Metadata     file.Metadata
}

type FileService struct {
	repo      repository.FileRepository
	validator *validation.Validator
	uploader  Uploader
	deleter   ObjectDeleter
	admission *upload.AdmissionController
	tracker   *progress.Tracker
	cfg       config.UploadConfig
	log       *logger.Logger
}

func NewFileService(
	repo repository.FileRepository,
	validator *validation.Validator,
	uploader Uploader,
	deleter ObjectDeleter,
	admission *upload.AdmissionController,
	tracker *progress.Tracker,
	cfg config.UploadConfig,
	log *logger.Logger,
) *FileService {
	return &FileService{
		repo:      repo,
		validator: validator,
		uploader:  uploader,
		deleter:   deleter,
		admission: admission,
		tracker:   tracker,
		cfg:       cfg,
		log:       log,
	}
}

// Upload validates the staged file, records its metadata, and drives it
// through the upload pipeline. The staged temp file is removed on every
// path once the pipeline is done with it.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*file.File, error) {
	defer s.removeTemp(in.TempPath)

	result := s.validator.Validate(in.Sample, in.OriginalName, in.MimeType, in.Size)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %v", filevault_errors.ErrValidationFailed, result.Errors)
	}

	f := file.New(result.SanitizedName, in.Size, in.MimeType, in.Metadata)
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("saving file record: %w", err)
	}

	large := in.Size >= s.cfg.LargeFileThreshold
	if large {
		if !s.admission.TryAdmit() {
			s.markFailed(ctx, f)
			return nil, filevault_errors.ErrTooManyLargeUploads
		}
		defer s.admission.Release()
	}

	if err := f.MarkUploading(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("updating file record: %w", err)
	}

	s.tracker.Start(ctx, f.ID.String(), f.Name, in.Size)
	s.tracker.Update(ctx, f.ID.String(), 0, progress.StatusValidating, 0, 0)

	res, err := s.uploader.Upload(ctx, upload.Request{
		SessionID:   f.ID.String(),
		Key:         f.StorageKey,
		FilePath:    in.TempPath,
		FileName:    f.Name,
		Size:        in.Size,
		ContentType: in.MimeType,
		Metadata:    objectMetadata(f),
	})
	if err != nil {
		s.log.Errorf("upload of %s failed: %v", f.StorageKey, err)
		s.markFailed(ctx, f)
		return nil, fmt.Errorf("%w: %s", filevault_errors.ErrUploadFailed, f.Name)
	}

	if err := f.MarkUploaded(res.URL); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("updating file record: %w", err)
	}

	s.log.Infof("uploaded %s (%d bytes) to %s", f.Name, f.SizeBytes, f.StorageKey)
	return f, nil
}

// GetByID returns the metadata record for one file.
func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the stored object and tombstones the metadata record. Only
// uploaded and failed files can be deleted.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !f.CanBeDeleted() {
		if f.Status == file.StatusDeleted {
			return filevault_errors.ErrAlreadyDeleted
		}
		return fmt.Errorf("%w: status %s", filevault_errors.ErrNotDeletable, f.Status)
	}

	if f.IsUploadComplete() {
		if err := s.deleter.DeleteObject(ctx, f.StorageKey); err != nil {
			return fmt.Errorf("deleting object %s: %w", f.StorageKey, err)
		}
	}

	if err := f.MarkDeleted(); err != nil {
		return err
	}
	return s.repo.Update(ctx, f)
}

// List returns metadata records, optionally filtered by category.
func (s *FileService) List(ctx context.Context, category string, limit, offset int) ([]*file.File, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if category == "" {
		return s.repo.List(ctx, limit, offset)
	}
	if !file.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", filevault_errors.ErrInvalidInput, category)
	}
	return s.repo.ListByCategory(ctx, file.Category(category), limit, offset)
}

// Progress returns the live progress record for an upload session, or nil
// when the session is unknown or already expired.
func (s *FileService) Progress(ctx context.Context, sessionID string) *progress.Record {
	return s.tracker.Get(ctx, sessionID)
}

// AllProgress returns every live progress record.
func (s *FileService) AllProgress(ctx context.Context) []progress.Record {
	return s.tracker.All(ctx)
}

func (s *FileService) markFailed(ctx context.Context, f *file.File) {
	if err := f.MarkFailed(); err != nil {
		s.log.Errorf("marking %s failed: %v", f.ID, err)
		return
	}
	if err := s.repo.Update(ctx, f); err != nil {
		s.log.Errorf("persisting failed status for %s: %v", f.ID, err)
	}
}

func (s *FileService) removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warnf("removing temp file %s: %v", path, err)
	}
}

func objectMetadata(f *file.File) map[string]string {
	md := map[string]string{
		"file-id":       f.ID.String(),
		"original-name": f.Name,
	}
	if f.Metadata.UploadedBy != "" {
		md["uploaded-by"] = f.Metadata.UploadedBy
	}
	return md
}

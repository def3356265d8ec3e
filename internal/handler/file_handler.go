package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"filevault/internal/domain/file"
	"filevault/internal/services"
	"filevault/internal/storage"
	"filevault/internal/transport/httpdto"
	"filevault/internal/validation"
	filevault_errors "filevault/pkg/errors"
	"filevault/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FileHandler struct {
	service     *services.FileService
	store       *storage.Client
	tempDir     string
	maxFileSize int64
	log         *logger.Logger
}

func NewFileHandler(service *services.FileService, store *storage.Client, tempDir string, maxFileSize int64, log *logger.Logger) *FileHandler {
	return &FileHandler{
		service:     service,
		store:       store,
		tempDir:     tempDir,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// Upload accepts one multipart form file, stages it to the temp directory,
// and drives it through the upload pipeline.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing form file", "INVALID_REQUEST"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse(
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize), "FILE_TOO_LARGE"))
		return
	}

	tempPath, sample, err := h.stage(fileHeader)
	if err != nil {
		h.log.Errorf("staging upload: %v", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("could not stage upload", "INTERNAL_ERROR"))
		return
	}

	input := services.UploadInput{
		TempPath:     tempPath,
		Sample:       sample,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Metadata: file.Metadata{
			UploadedBy:  c.PostForm("uploaded_by"),
			Description: c.PostForm("description"),
		},
	}

	f, err := h.service.Upload(c.Request.Context(), input)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewFileResponse(f)))
}

func (h *FileHandler) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, filevault_errors.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "VALIDATION_FAILED"))
	case errors.Is(err, filevault_errors.ErrTooManyLargeUploads):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(err.Error(), "TOO_MANY_LARGE_UPLOADS"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "UPLOAD_FAILED"))
	}
}

// stage copies the form file into the temp directory and captures the
// leading bytes for signature validation.
func (h *FileHandler) stage(fileHeader *multipart.FileHeader) (string, []byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("opening form file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	tempPath := filepath.Join(h.tempDir, uuid.New().String())
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(tempPath)
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}

	sample := make([]byte, validation.SampleSize)
	n, err := dst.ReadAt(sample, 0)
	if err != nil && err != io.EOF {
		os.Remove(tempPath)
		return "", nil, fmt.Errorf("reading sample: %w", err)
	}
	return tempPath, sample[:n], nil
}

func (h *FileHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid file id", "INVALID_REQUEST"))
		return
	}
	f, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, filevault_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("file not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewFileResponse(f)))
}

func (h *FileHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid file id", "INVALID_REQUEST"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, filevault_errors.ErrNotFound):
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("file not found", "NOT_FOUND"))
		case errors.Is(err, filevault_errors.ErrAlreadyDeleted):
			c.JSON(http.StatusConflict, httpdto.NewErrorResponse("file already deleted", "ALREADY_DELETED"))
		case errors.Is(err, filevault_errors.ErrNotDeletable):
			c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "NOT_DELETABLE"))
		default:
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		}
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FileHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	category := c.Query("category")

	files, err := h.service.List(c.Request.Context(), category, limit, offset)
	if err != nil {
		if errors.Is(err, filevault_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"files": httpdto.NewFileListResponse(files)}))
}

// Progress returns the live progress record for one upload session.
func (h *FileHandler) Progress(c *gin.Context) {
	sessionID := c.Param("id")
	record := h.service.Progress(c.Request.Context(), sessionID)
	if record == nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("no progress for session", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewProgressResponse(record)))
}

// AllProgress returns every live progress record.
func (h *FileHandler) AllProgress(c *gin.Context) {
	records := h.service.AllProgress(c.Request.Context())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"uploads": httpdto.NewProgressListResponse(records)}))
}

// Presign hands out a signed PUT URL so trusted clients can push directly
// to the bucket.
func (h *FileHandler) Presign(c *gin.Context) {
	var req httpdto.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if !file.IsAllowedMimeType(req.ContentType) {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(
			fmt.Sprintf("MIME type %q is not allowed", req.ContentType), "VALIDATION_FAILED"))
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > h.maxFileSize {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid size", "VALIDATION_FAILED"))
		return
	}

	name := validation.SanitizeFileName(req.FileName)
	key := file.BuildObjectKey(name, file.CategoryForMimeType(req.ContentType))
	url, err := h.store.PresignPut(c.Request.Context(), key, req.ContentType, req.SizeBytes)
	if err != nil {
		h.log.Errorf("presigning %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("could not presign upload", "INTERNAL_ERROR"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresignResponse{
		Key: key,
		URL: url,
	}))
}

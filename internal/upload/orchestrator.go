package upload

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"filevault/internal/progress"
	"filevault/internal/storage"
	"filevault/pkg/logger"
)

// Config tunes the orchestrator. Zero values fall back to the S3 minimums.
type Config struct {
	// PartSize is the target size of each multipart part in bytes.
	PartSize int64
	// LargeFileThreshold is the size at or above which multipart is used
	// instead of a single PutObject.
	LargeFileThreshold int64
	// PartConcurrency bounds simultaneous part uploads per session.
	PartConcurrency int
}

// Request describes one staged file to move into object storage.
type Request struct {
	SessionID   string
	Key         string
	FilePath    string
	FileName    string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Result is the outcome of a successful upload.
type Result struct {
	Key  string
	URL  string
	ETag string
}

// Orchestrator moves staged files into object storage, choosing between a
// single put and a gated multipart session based on size, and publishing
// progress after every batch of parts.
type Orchestrator struct {
	store   ObjectStore
	parts   *PartUploader
	tracker *progress.Tracker
	gate    *Gate
	cfg     Config
	log     *logger.Logger
}

func NewOrchestrator(store ObjectStore, tracker *progress.Tracker, cfg Config, log *logger.Logger) *Orchestrator {
	if cfg.PartSize < MinPartSize {
		cfg.PartSize = MinPartSize
	}
	if cfg.PartConcurrency < 1 {
		cfg.PartConcurrency = 1
	}
	return &Orchestrator{
		store:   store,
		parts:   NewPartUploader(store, log),
		tracker: tracker,
		gate:    NewGate(cfg.PartConcurrency),
		cfg:     cfg,
		log:     log,
	}
}

// Upload transfers the staged file to object storage. Files below the large
// threshold go up in one put; everything else runs a multipart session. On
// any multipart failure the session is aborted best-effort and the original
// failure is returned.
func (o *Orchestrator) Upload(ctx context.Context, req Request) (Result, error) {
	if req.Size >= o.cfg.LargeFileThreshold && req.Size > o.cfg.PartSize {
		return o.uploadMultipart(ctx, req)
	}
	return o.uploadSingle(ctx, req)
}

func (o *Orchestrator) uploadSingle(ctx context.Context, req Request) (Result, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		o.tracker.Fail(ctx, req.SessionID, "reading staged file")
		return Result{}, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	o.tracker.Update(ctx, req.SessionID, 0, progress.StatusUploading, 0, 0)

	etag, err := o.store.PutObject(ctx, req.Key, f, req.Size, req.ContentType, req.Metadata)
	if err != nil {
		o.tracker.Fail(ctx, req.SessionID, "storage rejected the upload")
		return Result{}, fmt.Errorf("put object %s: %w", req.Key, err)
	}

	o.tracker.Complete(ctx, req.SessionID)
	return Result{Key: req.Key, URL: o.store.ObjectURL(req.Key), ETag: etag}, nil
}

func (o *Orchestrator) uploadMultipart(ctx context.Context, req Request) (Result, error) {
	plan, err := PlanParts(req.Size, o.cfg.PartSize)
	if err != nil {
		o.tracker.Fail(ctx, req.SessionID, "invalid upload size")
		return Result{}, err
	}

	uploadID, err := o.store.InitiateMultipart(ctx, req.Key, req.ContentType, req.Metadata)
	if err != nil {
		o.tracker.Fail(ctx, req.SessionID, "could not start multipart session")
		return Result{}, &SessionInitError{Key: req.Key, Err: err}
	}

	o.log.Infof("multipart session %s opened for %s (%d parts)", uploadID, req.Key, plan.PartCount)
	o.tracker.Update(ctx, req.SessionID, 0, progress.StatusUploading, 0, plan.PartCount)

	completed, err := o.uploadParts(ctx, req, plan, uploadID)
	if err != nil {
		o.abort(req.Key, uploadID)
		o.tracker.Fail(ctx, req.SessionID, "part upload failed")
		return Result{}, err
	}

	sort.Slice(completed, func(i, j int) bool {
		return completed[i].PartNumber < completed[j].PartNumber
	})

	etag, err := o.store.CompleteMultipart(ctx, req.Key, uploadID, completed)
	if err != nil {
		o.abort(req.Key, uploadID)
		o.tracker.Fail(ctx, req.SessionID, "could not finalize upload")
		return Result{}, &CompletionError{Key: req.Key, Err: err}
	}

	o.tracker.Complete(ctx, req.SessionID)
	o.log.Infof("multipart session %s completed for %s", uploadID, req.Key)
	return Result{Key: req.Key, URL: o.store.ObjectURL(req.Key), ETag: etag}, nil
}

type partOutcome struct {
	part storage.CompletedPart
	size int64
	err  error
}

// uploadParts runs the plan in batches of PartConcurrency. All parts of a
// batch finish before the next batch starts, and progress is published once
// per batch so uploaded bytes only ever grow.
func (o *Orchestrator) uploadParts(ctx context.Context, req Request, plan Plan, uploadID string) ([]storage.CompletedPart, error) {
	completed := make([]storage.CompletedPart, 0, plan.PartCount)
	var uploadedBytes int64

	for start := 0; start < len(plan.Ranges); start += o.cfg.PartConcurrency {
		end := start + o.cfg.PartConcurrency
		if end > len(plan.Ranges) {
			end = len(plan.Ranges)
		}
		batch := plan.Ranges[start:end]

		outcomes := make(chan partOutcome, len(batch))
		var wg sync.WaitGroup
		for _, r := range batch {
			wg.Add(1)
			go func(r PartRange) {
				defer wg.Done()
				slot, err := o.gate.Acquire(ctx)
				if err != nil {
					outcomes <- partOutcome{err: &PartUploadError{PartNumber: r.Number, Err: err}}
					return
				}
				defer slot.Release()

				part, err := o.parts.Upload(ctx, req.FilePath, req.Key, uploadID, r)
				outcomes <- partOutcome{part: part, size: r.Len(), err: err}
			}(r)
		}
		wg.Wait()
		close(outcomes)

		for out := range outcomes {
			if out.err != nil {
				return nil, out.err
			}
			completed = append(completed, out.part)
			uploadedBytes += out.size
		}

		o.tracker.Update(ctx, req.SessionID, uploadedBytes, progress.StatusUploading, len(completed), plan.PartCount)
	}

	return completed, nil
}

// abort tears down an open session after a failure. Best-effort: an abort
// error is logged and never replaces the failure that triggered it.
func (o *Orchestrator) abort(key, uploadID string) {
	ctx := context.Background()
	if err := o.store.AbortMultipart(ctx, key, uploadID); err != nil {
		o.log.Errorf("aborting multipart session %s for %s: %v", uploadID, key, err)
	}
}

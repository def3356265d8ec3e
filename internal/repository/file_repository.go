// Package repository holds the metadata stores behind the service layer.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"filevault/internal/domain/file"
	filevault_errors "filevault/pkg/errors"
)

// FileRepository stores file metadata records.
type FileRepository interface {
	Save(ctx context.Context, f *file.File) error
	Update(ctx context.Context, f *file.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*file.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*file.File, error)
	ListByCategory(ctx context.Context, category file.Category, limit, offset int) ([]*file.File, error)
	Count(ctx context.Context) (int, error)
}

// InMemoryFileRepository keeps metadata in process memory. Records are
// copied on the way in and out so callers never share mutable state with
// the store.
type InMemoryFileRepository struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*file.File
}

func NewInMemoryFileRepository() *InMemoryFileRepository {
	return &InMemoryFileRepository{files: make(map[uuid.UUID]*file.File)}
}

func (r *InMemoryFileRepository) Save(ctx context.Context, f *file.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.files[f.ID]; exists {
		return fmt.Errorf("%w: file %s already exists", filevault_errors.ErrInvalidInput, f.ID)
	}
	clone := *f
	r.files[f.ID] = &clone
	return nil
}

func (r *InMemoryFileRepository) Update(ctx context.Context, f *file.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.files[f.ID]; !exists {
		return fmt.Errorf("%w: file %s", filevault_errors.ErrNotFound, f.ID)
	}
	clone := *f
	r.files[f.ID] = &clone
	return nil
}

func (r *InMemoryFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", filevault_errors.ErrNotFound, id)
	}
	clone := *f
	return &clone, nil
}

func (r *InMemoryFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("%w: file %s", filevault_errors.ErrNotFound, id)
	}
	delete(r.files, id)
	return nil
}

func (r *InMemoryFileRepository) List(ctx context.Context, limit, offset int) ([]*file.File, error) {
	return r.listWhere(func(*file.File) bool { return true }, limit, offset), nil
}

func (r *InMemoryFileRepository) ListByCategory(ctx context.Context, category file.Category, limit, offset int) ([]*file.File, error) {
	return r.listWhere(func(f *file.File) bool { return f.Category == category }, limit, offset), nil
}

func (r *InMemoryFileRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files), nil
}

// listWhere returns matching records newest first, paginated.
func (r *InMemoryFileRepository) listWhere(match func(*file.File) bool, limit, offset int) []*file.File {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*file.File, 0, len(r.files))
	for _, f := range r.files {
		if match(f) {
			clone := *f
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*file.File{}
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched
}

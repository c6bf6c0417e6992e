package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	files    map[uuid.UUID]*simplecms.FileRecord
	byParent map[string]map[uuid.UUID]struct{}
}

// New creates a new in-memory repository
func New() simplecms.Repository {
	return &Repository{
		files:    make(map[uuid.UUID]*simplecms.FileRecord),
		byParent: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.files[file.ID]; exists {
		return fmt.Errorf("file %s already exists", file.ID)
	}
	for id := range r.byParent[file.Parent] {
		if r.files[id].Filename == file.Filename {
			return fmt.Errorf("%w: %s already exists", simplecms.ErrInvalidFile, file.Key())
		}
	}

	// Store a copy to avoid external modifications
	r.files[file.ID] = file.Clone()
	r.index(file.Parent, file.ID)
	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, exists := r.files[id]
	if !exists {
		return nil, simplecms.ErrFileNotFound
	}
	return file.Clone(), nil
}

func (r *Repository) UpdateFile(ctx context.Context, file *simplecms.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.files[file.ID]
	if !exists {
		return simplecms.ErrFileNotFound
	}
	if old.Parent != file.Parent {
		delete(r.byParent[old.Parent], file.ID)
		r.index(file.Parent, file.ID)
	}
	r.files[file.ID] = file.Clone()
	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, exists := r.files[id]
	if !exists {
		return simplecms.ErrFileNotFound
	}
	delete(r.byParent[file.Parent], id)
	delete(r.files, id)
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, parent string) ([]*simplecms.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecms.FileRecord, 0, len(r.byParent[parent]))
	for id := range r.byParent[parent] {
		result = append(result, r.files[id].Clone())
	}
	return result, nil
}

func (r *Repository) index(parent string, id uuid.UUID) {
	ids, ok := r.byParent[parent]
	if !ok {
		ids = make(map[uuid.UUID]struct{})
		r.byParent[parent] = ids
	}
	ids[id] = struct{}{}
}

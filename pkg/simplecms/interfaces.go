package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for file record persistence
type Repository interface {
	CreateFile(ctx context.Context, file *FileRecord) error
	GetFile(ctx context.Context, id uuid.UUID) (*FileRecord, error)
	UpdateFile(ctx context.Context, file *FileRecord) error
	DeleteFile(ctx context.Context, id uuid.UUID) error

	// ListFiles returns the files attached to parent. Order is unspecified.
	ListFiles(ctx context.Context, parent string) ([]*FileRecord, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	// FileCreated is fired when a file is created
	FileCreated(ctx context.Context, file *FileRecord) error

	// FileUpdated is fired when a file's content changes
	FileUpdated(ctx context.Context, file *FileRecord) error

	// FileDeleted is fired when a file is deleted
	FileDeleted(ctx context.Context, fileID uuid.UUID) error
}

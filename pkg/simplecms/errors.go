package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
)

// Error types
var (
	// ErrFileNotFound indicates a file was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFile indicates a file record failed validation
	ErrInvalidFile = errors.New("invalid file")

	// ErrUnknownOperation indicates neither the entity nor its asset defines an operation
	ErrUnknownOperation = asset.ErrUnknownOperation
)

// FileError represents an error related to file operations
type FileError struct {
	FileID uuid.UUID
	Op     string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file operation %s failed for file %s: %v", e.Op, e.FileID, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

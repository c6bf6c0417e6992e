package simplecms

import (
	"fmt"
	"maps"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roots are the filesystem locations an App works below. Empty means unset.
type Roots struct {
	Site    string `json:"site"`
	Content string `json:"content"`
	Assets  string `json:"assets"`
}

// FileRecord is the persisted form of a content file.
type FileRecord struct {
	ID        uuid.UUID      `json:"id"`
	Parent    string         `json:"parent"`
	Filename  string         `json:"filename"`
	Template  string         `json:"template,omitempty"`
	Content   map[string]any `json:"content"`
	Sort      int            `json:"sort"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Key returns the path of the file relative to the content root.
func (r *FileRecord) Key() string {
	if r.Parent == "" {
		return r.Filename
	}
	return r.Parent + "/" + r.Filename
}

// Clone returns a deep enough copy for repositories to hand out.
func (r *FileRecord) Clone() *FileRecord {
	c := *r
	c.Content = maps.Clone(r.Content)
	return &c
}

// CreateFileRequest contains parameters for creating a file
type CreateFileRequest struct {
	Parent   string         `json:"parent"`
	Filename string         `json:"filename"`
	Template string         `json:"template,omitempty"`
	Content  map[string]any `json:"content,omitempty"`
	Sort     int            `json:"sort,omitempty"`
}

// Validate checks that parent is a clean relative path and filename a
// single path segment.
func (req *CreateFileRequest) Validate() error {
	req.Parent = strings.Trim(req.Parent, "/")
	if req.Parent == "" {
		return fmt.Errorf("%w: parent is required", ErrInvalidFile)
	}
	if path.Clean(req.Parent) != req.Parent || req.Parent == ".." || strings.HasPrefix(req.Parent, "../") {
		return fmt.Errorf("%w: parent %q is not a clean relative path", ErrInvalidFile, req.Parent)
	}
	if req.Filename == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidFile)
	}
	if strings.ContainsAny(req.Filename, `/\`) || req.Filename == "." || req.Filename == ".." {
		return fmt.Errorf("%w: filename %q must be a single path segment", ErrInvalidFile, req.Filename)
	}
	return nil
}

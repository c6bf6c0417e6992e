package urlstrategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ContentBasedStrategy routes downloads through the application by file ID,
// e.g. "/api/v1/files/<id>/download".
type ContentBasedStrategy struct {
	APIBaseURL string
}

// NewContentBasedStrategy creates a new content-based URL strategy
func NewContentBasedStrategy(apiBaseURL string) *ContentBasedStrategy {
	return &ContentBasedStrategy{APIBaseURL: strings.TrimSuffix(apiBaseURL, "/")}
}

func (s *ContentBasedStrategy) FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error) {
	if fileID == uuid.Nil {
		return "", fmt.Errorf("file ID is required")
	}
	return fmt.Sprintf("%s/files/%s/download", s.APIBaseURL, fileID), nil
}

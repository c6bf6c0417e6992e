package urlstrategy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// PrefixStrategy serves files below a media base such as "/media".
type PrefixStrategy struct {
	BaseURL string
}

// NewPrefixStrategy creates a new prefix URL strategy
func NewPrefixStrategy(baseURL string) *PrefixStrategy {
	return &PrefixStrategy{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *PrefixStrategy) FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}
	return s.BaseURL + "/" + escapeKey(key), nil
}

// escapeKey escapes each path segment of key, leaving the separators intact.
func escapeKey(key string) string {
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

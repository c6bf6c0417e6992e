package urlstrategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CDNStrategy generates URLs that point directly to a CDN
type CDNStrategy struct {
	CDNBaseURL string // e.g., "https://cdn.example.com"
	Version    string // appended as ?v= when set
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(cdnBaseURL string) *CDNStrategy {
	return &CDNStrategy{CDNBaseURL: strings.TrimSuffix(cdnBaseURL, "/")}
}

func (s *CDNStrategy) FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error) {
	if s.CDNBaseURL == "" {
		return "", fmt.Errorf("CDN base URL not configured")
	}
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}

	u := fmt.Sprintf("%s/%s", s.CDNBaseURL, escapeKey(key))
	if s.Version != "" {
		u += "?v=" + s.Version
	}
	return u, nil
}

// Package urlstrategy decides which public URL a content file is served from.
package urlstrategy

import (
	"context"

	"github.com/google/uuid"
)

// URLStrategy defines the interface for URL generation strategies
type URLStrategy interface {
	// FileURL returns the public URL of the file with the given ID. The key is
	// the file's path relative to the content root, e.g. "blog/hello/cover.jpg".
	FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error)
}

// StrategyFunc adapts a function to URLStrategy.
type StrategyFunc func(ctx context.Context, fileID uuid.UUID, key string) (string, error)

func (f StrategyFunc) FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error) {
	return f(ctx, fileID, key)
}

package urlstrategy

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
)

// Signer issues time limited download URLs for object keys.
type Signer interface {
	PresignGet(ctx context.Context, key string, downloadFilename string) (string, error)
}

// SignedStrategy delegates URL generation to a storage signer, typically S3.
// Files served this way are usually remote only and have no local root.
type SignedStrategy struct {
	Signer Signer
	Prefix string // object key prefix, e.g. "content/"
}

// NewSignedStrategy creates a new signed URL strategy
func NewSignedStrategy(signer Signer, prefix string) *SignedStrategy {
	return &SignedStrategy{Signer: signer, Prefix: prefix}
}

func (s *SignedStrategy) FileURL(ctx context.Context, fileID uuid.UUID, key string) (string, error) {
	if s.Signer == nil {
		return "", fmt.Errorf("signer not configured")
	}
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}
	return s.Signer.PresignGet(ctx, s.Prefix+key, path.Base(key))
}

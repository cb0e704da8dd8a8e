package mediastore

import (
	"context"
	"io"
)

// MediaStore persists the raw image and audio blobs users upload, so a
// history entry can re-serve its original input.
type MediaStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

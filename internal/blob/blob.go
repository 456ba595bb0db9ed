// Package blob stores image bytes in an object store. Records only keep the
// object key and content type.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/devdish/devdish/backend/config"
)

var ErrNotFound = errors.New("object not found")

const defaultContentType = "application/octet-stream"

// Object is a stored blob opened for reading. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.ImageStoreS3:
		return NewS3Store(ctx, cfg)
	case config.ImageStoreMinio:
		return NewMinioStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported image store %q", cfg.Backend)
	}
}

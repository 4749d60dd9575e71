package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fileshare/fileshare/internal/config"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is an open stored file. Callers must Close it.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectStore persists uploaded file bytes under a caller-chosen object name.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (*Object, error)
	Delete(ctx context.Context, objectName string) error
	EnsureBucket(ctx context.Context) error
	Backend() string
}

// New builds the ObjectStore selected by cfg.Backend.
func New(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case config.StorageDisk, "":
		return NewDiskStore(cfg.UploadDir), nil
	case config.StorageMinIO:
		return NewMinIOClient(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

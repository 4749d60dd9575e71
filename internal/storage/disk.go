package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fileshare/fileshare/pkg/logger"
)

// DiskStore keeps objects as flat files inside one upload directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (d *DiskStore) Backend() string {
	return "disk"
}

func (d *DiskStore) path(objectName string) (string, error) {
	if objectName == "" || objectName != filepath.Base(objectName) || strings.HasPrefix(objectName, ".") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(d.dir, objectName), nil
}

func (d *DiskStore) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(d.dir, 0o750)
}

func (d *DiskStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	target, err := d.path(objectName)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		logger.Error("disk_upload_failed", err, map[string]interface{}{"object_name": objectName})
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	written, err := io.Copy(tmp, readerWithContext(ctx, reader))
	if err != nil {
		cleanup()
		logger.Error("disk_upload_failed", err, map[string]interface{}{"object_name": objectName})
		return err
	}
	if size >= 0 && written != size {
		cleanup()
		return fmt.Errorf("short write for %s: wrote %d of %d bytes", objectName, written, size)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	logger.Info("disk_upload_success", map[string]interface{}{
		"object_name":  objectName,
		"size":         written,
		"content_type": contentType,
	})
	return nil
}

func (d *DiskStore) Download(_ context.Context, objectName string) (*Object, error) {
	target, err := d.path(objectName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Object{
		ReadCloser:  f,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(objectName)),
	}, nil
}

// Delete removes the object; a missing object is not an error.
func (d *DiskStore) Delete(_ context.Context, objectName string) error {
	target, err := d.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("disk_delete_failed", err, map[string]interface{}{"object_name": objectName})
		return err
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

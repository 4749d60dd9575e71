package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/storage"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/google/uuid"
)

const maxExtensionLen = 16

// UploadInput is one file of an upload batch.
type UploadInput struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

type UploadService struct {
	Files   *store.FileStore
	Storage storage.ObjectStore
	limits  config.UploadConfig
	now     func() time.Time
}

func NewUploadService(files *store.FileStore, objects storage.ObjectStore, limits config.UploadConfig) *UploadService {
	return &UploadService{Files: files, Storage: objects, limits: limits, now: time.Now}
}

// NormalizeMimeType strips parameters and lower-cases the media type.
func NormalizeMimeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Validate checks a whole batch against the configured limits without writing anything.
func (s *UploadService) Validate(inputs []UploadInput) error {
	err := s.validate(inputs)
	if err != nil {
		uploadsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
	}
	return err
}

func (s *UploadService) validate(inputs []UploadInput) error {
	if len(inputs) == 0 {
		return newError(ErrInvalidInput, "no files uploaded")
	}
	if len(inputs) > s.limits.MaxFiles {
		return newError(ErrInvalidInput, fmt.Sprintf("at most %d files per upload", s.limits.MaxFiles))
	}

	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return newError(ErrInvalidInput, "file name is required")
		}
		if !slices.Contains(s.limits.AllowedMimeTypes, NormalizeMimeType(in.MimeType)) {
			return newError(ErrUnsupportedType, fmt.Sprintf("file type %q is not allowed", in.MimeType))
		}
		if in.Size < 0 {
			return newError(ErrInvalidInput, "file size is unknown")
		}
		if in.Size > s.limits.MaxFileSizeBytes {
			return newError(ErrTooLarge, fmt.Sprintf("%s exceeds the %d byte limit", in.Name, s.limits.MaxFileSizeBytes))
		}
	}
	return nil
}

// Upload stores every file of the batch and creates one record per file.
// Either the whole batch is recorded or none of it is.
func (s *UploadService) Upload(ctx context.Context, ownerID uuid.UUID, inputs []UploadInput) ([]*models.File, error) {
	if ownerID == uuid.Nil {
		return nil, newError(ErrUnauthorized, "authentication required")
	}
	if err := s.Validate(inputs); err != nil {
		return nil, err
	}

	uploadedAt := s.now().UTC()
	records := make([]*models.File, 0, len(inputs))
	for _, in := range inputs {
		storedName := uuid.New().String() + storedExtension(in.Name)
		mimeType := NormalizeMimeType(in.MimeType)

		if err := s.Storage.Upload(ctx, storedName, in.Reader, in.Size, mimeType); err != nil {
			s.cleanup(ownerID, records)
			return nil, fmt.Errorf("storing %s: %w", in.Name, err)
		}

		records = append(records, &models.File{
			OwnerID:      ownerID,
			OriginalName: filepath.Base(in.Name),
			StoredName:   storedName,
			StoragePath:  storedName,
			Size:         in.Size,
			MimeType:     mimeType,
			UploadedAt:   uploadedAt,
			SharedWith:   []uuid.UUID{},
		})
	}

	if err := s.Files.CreateBatch(ctx, records); err != nil {
		s.cleanup(ownerID, records)
		return nil, err
	}

	for _, record := range records {
		filesUploadedTotal.WithLabelValues(record.MimeType).Inc()
		uploadedBytesTotal.Add(float64(record.Size))
		logger.InfoWithUser(ownerID.String(), "file_uploaded", map[string]interface{}{
			"file_id":   record.ID.String(),
			"file_name": record.OriginalName,
			"mime_type": record.MimeType,
			"size":      record.Size,
			"backend":   s.Storage.Backend(),
		})
	}
	return records, nil
}

// storedExtension keeps only lower-case letters and digits of the name's
// extension so stored names never need escaping in a URL path.
func storedExtension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if ext == "" {
		return ""
	}
	if len(ext) > maxExtensionLen {
		ext = ext[:maxExtensionLen]
	}
	return "." + ext
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "type"
	case errors.Is(err, ErrTooLarge):
		return "size"
	default:
		return "invalid"
	}
}

// cleanup removes objects written for a batch that will not be recorded.
func (s *UploadService) cleanup(ownerID uuid.UUID, written []*models.File) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, record := range written {
		if err := s.Storage.Delete(ctx, record.StoragePath); err != nil {
			logger.ErrorWithUser(ownerID.String(), "orphan_cleanup_failed", err, map[string]interface{}{
				"stored_name": record.StoredName,
			})
		}
	}
}

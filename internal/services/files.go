package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/storage"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/signedurl"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/google/uuid"
)

// Link is a freshly issued share link.
type Link struct {
	Token     string    `json:"linkToken"`
	ExpiresAt time.Time `json:"expiresAt"`
	ShareURL  string    `json:"shareUrl"`
}

// RawURL is a short-lived signed URL for a stored object.
type RawURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type FileService struct {
	Files   *store.FileStore
	Users   *store.UserStore
	Storage storage.ObjectStore
	Access  *AccessEvaluator
	Signer  *signedurl.Signer
	baseURL string
	links   config.LinkConfig
}

func NewFileService(files *store.FileStore, users *store.UserStore, objects storage.ObjectStore,
	access *AccessEvaluator, signer *signedurl.Signer, baseURL string, links config.LinkConfig) *FileService {
	return &FileService{
		Files:   files,
		Users:   users,
		Storage: objects,
		Access:  access,
		Signer:  signer,
		baseURL: baseURL,
		links:   links,
	}
}

func (s *FileService) List(ctx context.Context, requesterID uuid.UUID) ([]models.File, error) {
	files, err := s.Files.ListVisibleTo(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i] = files[i].ForViewer(requesterID)
	}
	return files, nil
}

// Get returns the record if requester may read it.
func (s *FileService) Get(ctx context.Context, fileID, requesterID uuid.UUID, linkToken string) (*models.File, error) {
	file, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !s.Access.CanRead(file, requesterID, linkToken) {
		logger.WarnWithUser(requesterID.String(), "file_access_denied", map[string]interface{}{
			"file_id":  fileID.String(),
			"via_link": linkToken != "",
		})
		accessDeniedTotal.WithLabelValues("read").Inc()
		return nil, newError(ErrForbidden, "access denied")
	}
	return file, nil
}

// Open checks read access and opens the stored bytes. Callers must close the object.
func (s *FileService) Open(ctx context.Context, fileID, requesterID uuid.UUID, linkToken string) (*models.File, *storage.Object, error) {
	file, err := s.Get(ctx, fileID, requesterID, linkToken)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.Storage.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.Error("file_missing_on_server", err, map[string]interface{}{"file_id": fileID.String()})
			return nil, nil, newError(ErrNotFound, "file missing on server")
		}
		return nil, nil, fmt.Errorf("opening %s: %w", file.StoredName, err)
	}

	logger.InfoWithUser(requesterID.String(), "file_downloaded", map[string]interface{}{
		"file_id":  fileID.String(),
		"via_link": file.OwnerID != requesterID && !file.IsSharedWith(requesterID),
	})
	return file, obj, nil
}

// RawURL mints a signed URL for the file's storage path after a read check.
func (s *FileService) RawURL(ctx context.Context, fileID, requesterID uuid.UUID, linkToken string) (*RawURL, error) {
	file, err := s.Get(ctx, fileID, requesterID, linkToken)
	if err != nil {
		return nil, err
	}

	sig, expiresAt, err := s.Signer.Sign(file.StoredName)
	if err != nil {
		return nil, fmt.Errorf("signing raw url: %w", err)
	}
	return &RawURL{
		URL:       fmt.Sprintf("%s/uploads/%s?sig=%s", s.baseURL, url.PathEscape(file.StoredName), url.QueryEscape(sig)),
		ExpiresAt: expiresAt,
	}, nil
}

// OpenSigned serves a raw storage path whose signature was minted by RawURL.
func (s *FileService) OpenSigned(ctx context.Context, storedName, sig string) (*models.File, *storage.Object, error) {
	if sig == "" {
		return nil, nil, newError(ErrForbidden, "signature required")
	}
	if err := s.Signer.Verify(storedName, sig); err != nil {
		logger.Warn("raw_url_rejected", map[string]interface{}{"stored_name": storedName, "reason": err.Error()})
		accessDeniedTotal.WithLabelValues("raw").Inc()
		return nil, nil, newError(ErrForbidden, "invalid or expired signature")
	}

	file, err := s.Files.GetByStoredName(ctx, storedName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, newError(ErrNotFound, "file not found")
		}
		return nil, nil, err
	}

	obj, err := s.Storage.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, newError(ErrNotFound, "file missing on server")
		}
		return nil, nil, fmt.Errorf("opening %s: %w", storedName, err)
	}
	return file, obj, nil
}

// IssueLink replaces any existing link with a new random token. A nil
// ttlHours uses the configured default; zero yields a link that is already expired.
func (s *FileService) IssueLink(ctx context.Context, fileID, requesterID uuid.UUID, ttlHours *int) (*Link, error) {
	hours := s.links.DefaultTTLHours
	if ttlHours != nil {
		hours = *ttlHours
	}
	if hours < 0 || hours > s.links.MaxTTLHours {
		return nil, newError(ErrInvalidInput, fmt.Sprintf("expiresInHours must be between 0 and %d", s.links.MaxTTLHours))
	}

	file, err := s.loadMutable(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateLinkToken()
	if err != nil {
		return nil, fmt.Errorf("generating link token: %w", err)
	}
	expiresAt := s.Access.Now().UTC().Add(time.Duration(hours) * time.Hour)

	file.SetLink(token, expiresAt)
	if err := s.Files.SaveLink(ctx, file); err != nil {
		return nil, s.translate(err)
	}

	linksIssuedTotal.Inc()
	logger.InfoWithUser(requesterID.String(), "link_issued", map[string]interface{}{
		"file_id":    file.ID.String(),
		"expires_at": expiresAt,
	})

	return &Link{
		Token:     token,
		ExpiresAt: expiresAt,
		ShareURL:  fmt.Sprintf("%s/api/files/%s/download?link=%s", s.baseURL, file.ID, token),
	}, nil
}

func (s *FileService) RevokeLink(ctx context.Context, fileID, requesterID uuid.UUID) error {
	file, err := s.loadMutable(ctx, fileID, requesterID)
	if err != nil {
		return err
	}
	file.ClearLink()
	if err := s.Files.SaveLink(ctx, file); err != nil {
		return s.translate(err)
	}
	logger.InfoWithUser(requesterID.String(), "link_revoked", map[string]interface{}{"file_id": file.ID.String()})
	return nil
}

// ShareWith grants read access to every registered user in emails. Unknown
// addresses and the owner's own address are skipped.
func (s *FileService) ShareWith(ctx context.Context, fileID, requesterID uuid.UUID, emails []string) (*models.File, error) {
	if len(emails) == 0 {
		return nil, newError(ErrInvalidInput, "userEmails must not be empty")
	}

	file, err := s.loadMutable(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}

	users, err := s.Users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		if user.ID != file.OwnerID {
			ids = append(ids, user.ID)
		}
	}
	if err := s.Files.AddShares(ctx, file.ID, ids); err != nil {
		return nil, err
	}

	logger.InfoWithUser(requesterID.String(), "file_shared", map[string]interface{}{
		"file_id":    file.ID.String(),
		"requested":  len(emails),
		"recipients": len(ids),
	})

	return s.load(ctx, file.ID)
}

func (s *FileService) Unshare(ctx context.Context, fileID, requesterID, userID uuid.UUID) (*models.File, error) {
	file, err := s.loadMutable(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.Files.RemoveShare(ctx, file.ID, userID); err != nil {
		return nil, err
	}

	logger.InfoWithUser(requesterID.String(), "file_unshared", map[string]interface{}{
		"file_id": file.ID.String(),
		"user_id": userID.String(),
	})
	return s.load(ctx, file.ID)
}

// Delete removes the stored bytes and then the record. A missing object does
// not prevent the record from being removed.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID uuid.UUID) error {
	file, err := s.loadMutable(ctx, fileID, requesterID)
	if err != nil {
		return err
	}

	if err := s.Storage.Delete(ctx, file.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logger.ErrorWithUser(requesterID.String(), "object_delete_failed", err, map[string]interface{}{
			"file_id":     file.ID.String(),
			"stored_name": file.StoredName,
		})
	}

	if err := s.Files.Delete(ctx, file.ID); err != nil {
		return s.translate(err)
	}

	logger.InfoWithUser(requesterID.String(), "file_deleted", map[string]interface{}{
		"file_id":   file.ID.String(),
		"file_name": file.OriginalName,
	})
	return nil
}

func (s *FileService) load(ctx context.Context, fileID uuid.UUID) (*models.File, error) {
	file, err := s.Files.Get(ctx, fileID)
	if err != nil {
		return nil, s.translate(err)
	}
	return file, nil
}

func (s *FileService) loadMutable(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	file, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !s.Access.CanMutate(file, requesterID) {
		logger.WarnWithUser(requesterID.String(), "file_mutation_denied", map[string]interface{}{
			"file_id": fileID.String(),
		})
		accessDeniedTotal.WithLabelValues("mutate").Inc()
		return nil, newError(ErrForbidden, "only the owner can modify this file")
	}
	return file, nil
}

func (s *FileService) translate(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, "file not found")
	}
	return err
}

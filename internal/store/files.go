package store

import (
	"context"
	"fmt"

	"github.com/fileshare/fileshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FileStore struct {
	DB *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{DB: db}
}

// CreateBatch inserts all records in one transaction.
func (s *FileStore) CreateBatch(ctx context.Context, files []*models.File) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, file := range files {
			if err := tx.Omit(clause.Associations).Create(file).Error; err != nil {
				return fmt.Errorf("creating file record %s: %w", file.OriginalName, translate(err))
			}
		}
		return nil
	})
}

// Get loads a record with its share list populated.
func (s *FileStore) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.loadSharedWith(ctx, []*models.File{&file}); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByStoredName finds the record owning a stored object name.
func (s *FileStore) GetByStoredName(ctx context.Context, storedName string) (*models.File, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "stored_name = ?", storedName).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// ListVisibleTo returns files owned by or shared with userID, newest first.
func (s *FileStore) ListVisibleTo(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	sharedIDs := s.DB.Model(&models.FileShare{}).Select("file_id").Where("user_id = ?", userID)

	var files []models.File
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Or("id IN (?)", sharedIDs).
		Order("uploaded_at DESC").
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	ptrs := make([]*models.File, len(files))
	for i := range files {
		ptrs[i] = &files[i]
	}
	if err := s.loadSharedWith(ctx, ptrs); err != nil {
		return nil, err
	}
	return files, nil
}

// AddShares grants each user read access; existing grants are left untouched.
func (s *FileStore) AddShares(ctx context.Context, fileID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.FileShare, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.FileShare{FileID: fileID, UserID: userID})
	}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("adding shares: %w", err)
	}
	return nil
}

func (s *FileStore) RemoveShare(ctx context.Context, fileID, userID uuid.UUID) error {
	if err := s.DB.WithContext(ctx).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		Delete(&models.FileShare{}).Error; err != nil {
		return fmt.Errorf("removing share: %w", err)
	}
	return nil
}

// SaveLink persists the file's link token and expiry, which must be both set
// (File.SetLink) or both cleared (File.ClearLink).
func (s *FileStore) SaveLink(ctx context.Context, file *models.File) error {
	if (file.LinkToken == nil) != (file.LinkExpiresAt == nil) {
		return fmt.Errorf("link token and expiry must be set together")
	}
	result := s.DB.WithContext(ctx).Model(&models.File{}).Where("id = ?", file.ID).Updates(map[string]interface{}{
		"link_token":      file.LinkToken,
		"link_expires_at": file.LinkExpiresAt,
	})
	if result.Error != nil {
		return fmt.Errorf("updating link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record and its share rows.
func (s *FileStore) Delete(ctx context.Context, fileID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&models.FileShare{}).Error; err != nil {
			return fmt.Errorf("deleting shares: %w", err)
		}
		result := tx.Delete(&models.File{}, "id = ?", fileID)
		if result.Error != nil {
			return fmt.Errorf("deleting file record: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) loadSharedWith(ctx context.Context, files []*models.File) error {
	if len(files) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(files))
	byID := make(map[uuid.UUID]*models.File, len(files))
	for i, file := range files {
		ids[i] = file.ID
		byID[file.ID] = file
		file.SharedWith = []uuid.UUID{}
	}

	var shares []models.FileShare
	if err := s.DB.WithContext(ctx).
		Where("file_id IN ?", ids).
		Order("created_at ASC").
		Find(&shares).Error; err != nil {
		return fmt.Errorf("loading shares: %w", err)
	}
	for _, share := range shares {
		if file, ok := byID[share.FileID]; ok {
			file.SharedWith = append(file.SharedWith, share.UserID)
		}
	}
	return nil
}

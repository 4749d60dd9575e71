package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/fileshare/fileshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("creating user: %w", translate(err))
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "email = ?", NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmails resolves the given addresses to users; unknown addresses are skipped.
func (s *UserStore) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	normalized := make([]string, 0, len(emails))
	seen := map[string]bool{}
	for _, email := range emails {
		email = NormalizeEmail(email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		normalized = append(normalized, email)
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := s.DB.WithContext(ctx).Where("email IN ?", normalized).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("resolving emails: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return fmt.Errorf("updating password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

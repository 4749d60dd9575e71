package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/google/uuid"
)

const invalidCredentials = "invalid credentials"

type AuthService struct {
	Users  *store.UserStore
	Tokens *utils.TokenIssuer
}

func NewAuthService(users *store.UserStore, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

// Session is the result of a successful registration or login.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = store.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return nil, newError(ErrInvalidInput, "email, password and name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newError(ErrInvalidInput, "invalid email")
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, newError(ErrConflict, "email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "email already registered")
		}
		return nil, err
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email": user.Email,
	})

	return s.issue(user)
}

// Login fails with the same message for unknown emails and wrong passwords.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = store.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrInvalidInput, "email and password are required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("login_failed_user_not_found", map[string]interface{}{"email": email})
			return nil, newError(ErrUnauthorized, invalidCredentials)
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		logger.WarnWithUser(user.ID.String(), "login_failed_invalid_password", map[string]interface{}{"email": email})
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{"email": user.Email})
	return s.issue(user)
}

// VerifyToken resolves a bearer token to its user.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newError(ErrUnauthorized, "missing auth token")
	}

	claims, err := s.Tokens.Validate(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid or expired token")
	}

	user, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return newError(ErrInvalidInput, "currentPassword and newPassword are required")
	}
	if err := checkPasswordLength(next); err != nil {
		return err
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrUnauthorized, "user not found")
		}
		return err
	}
	if !utils.CheckPassword(current, user.PasswordHash) {
		logger.WarnWithUser(userID.String(), "password_change_rejected", nil)
		return newError(ErrUnauthorized, "current password is incorrect")
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	logger.InfoWithUser(userID.String(), "password_changed", nil)
	return nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, err := s.Tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func checkPasswordLength(password string) error {
	if len(password) > utils.MaxPasswordBytes {
		return newError(ErrInvalidInput, fmt.Sprintf("password must be at most %d bytes", utils.MaxPasswordBytes))
	}
	return nil
}

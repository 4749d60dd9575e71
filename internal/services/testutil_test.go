package services

import (
	"context"
	"testing"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/database"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/storage"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/signedurl"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	DB      *gorm.DB
	Users   *store.UserStore
	Files   *store.FileStore
	Storage *storage.DiskStore
	Auth    *AuthService
	Uploads *UploadService
	FileSvc *FileService
	Now     time.Time
}

var testLimits = config.UploadConfig{
	MaxFileSizeBytes: 1024,
	MaxFiles:         3,
	AllowedMimeTypes: config.DefaultAllowedMimeTypes,
}

var testLinks = config.LinkConfig{DefaultTTLHours: 24, MaxTTLHours: 720, RawURLTTL: time.Minute}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}

	objects := storage.NewDiskStore(t.TempDir())
	if err := objects.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("failed preparing upload dir: %v", err)
	}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	users := store.NewUserStore(db)
	files := store.NewFileStore(db)
	access := NewAccessEvaluator().WithClock(fixedClock(now))
	signer := signedurl.New("test-secret", time.Minute).WithClock(fixedClock(now))

	return &serviceTestEnv{
		DB:      db,
		Users:   users,
		Files:   files,
		Storage: objects,
		Auth:    NewAuthService(users, utils.NewTokenIssuer("test-secret", time.Hour)),
		Uploads: NewUploadService(files, objects, testLimits),
		FileSvc: NewFileService(files, users, objects, access, signer, "http://files.test", testLinks),
		Now:     now,
	}
}

func (env *serviceTestEnv) register(t *testing.T, email string) *models.User {
	t.Helper()
	session, err := env.Auth.Register(context.Background(), email, "password123", "Test User")
	if err != nil {
		t.Fatalf("failed registering %s: %v", email, err)
	}
	return session.User
}

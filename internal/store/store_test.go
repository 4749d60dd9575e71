package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fileshare/fileshare/internal/database"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createStoreTestUser(t *testing.T, users *UserStore, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "Test User", PasswordHash: "hash"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed creating user %s: %v", email, err)
	}
	return user
}

func createStoreTestFile(t *testing.T, files *FileStore, owner uuid.UUID, name string, uploadedAt time.Time) *models.File {
	t.Helper()
	file := &models.File{
		OwnerID:      owner,
		OriginalName: name,
		StoredName:   uuid.NewString() + ".pdf",
		StoragePath:  name,
		Size:         10,
		MimeType:     "application/pdf",
		UploadedAt:   uploadedAt,
	}
	if err := files.CreateBatch(context.Background(), []*models.File{file}); err != nil {
		t.Fatalf("failed creating file: %v", err)
	}
	return file
}

func TestUserStore(t *testing.T) {
	db := setupStoreTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	alice := createStoreTestUser(t, users, "  Alice@Example.COM ")

	t.Run("stores normalized email", func(t *testing.T) {
		if alice.Email != "alice@example.com" {
			t.Fatalf("expected normalized email, got %q", alice.Email)
		}
	})

	t.Run("looks up case-insensitively", func(t *testing.T) {
		found, err := users.GetByEmail(ctx, "ALICE@example.com")
		if err != nil {
			t.Fatalf("GetByEmail returned error: %v", err)
		}
		if found.ID != alice.ID {
			t.Fatalf("expected %s, got %s", alice.ID, found.ID)
		}
	})

	t.Run("rejects duplicate email in another case", func(t *testing.T) {
		dup := &models.User{Email: "ALICE@EXAMPLE.COM", Name: "Dup", PasswordHash: "hash"}
		if err := users.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := users.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := users.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("resolves known emails and skips unknown", func(t *testing.T) {
		bob := createStoreTestUser(t, users, "bob@example.com")
		found, err := users.FindByEmails(ctx, []string{"BOB@example.com", "nobody@example.com", "bob@example.com", ""})
		if err != nil {
			t.Fatalf("FindByEmails returned error: %v", err)
		}
		if len(found) != 1 || found[0].ID != bob.ID {
			t.Fatalf("expected only bob, got %+v", found)
		}
	})

	t.Run("updates password hash", func(t *testing.T) {
		if err := users.UpdatePasswordHash(ctx, alice.ID, "new-hash"); err != nil {
			t.Fatalf("UpdatePasswordHash returned error: %v", err)
		}
		reloaded, err := users.GetByID(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetByID returned error: %v", err)
		}
		if reloaded.PasswordHash != "new-hash" {
			t.Fatalf("expected updated hash, got %q", reloaded.PasswordHash)
		}
		if err := users.UpdatePasswordHash(ctx, uuid.New(), "x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
		}
	})
}

func TestFileStore_Shares(t *testing.T) {
	db := setupStoreTestDB(t)
	users := NewUserStore(db)
	files := NewFileStore(db)
	ctx := context.Background()

	owner := createStoreTestUser(t, users, "owner@example.com")
	reader := createStoreTestUser(t, users, "reader@example.com")
	file := createStoreTestFile(t, files, owner.ID, "report.pdf", time.Now())

	if err := files.AddShares(ctx, file.ID, []uuid.UUID{reader.ID}); err != nil {
		t.Fatalf("AddShares returned error: %v", err)
	}
	if err := files.AddShares(ctx, file.ID, []uuid.UUID{reader.ID, reader.ID}); err != nil {
		t.Fatalf("repeated AddShares returned error: %v", err)
	}

	loaded, err := files.Get(ctx, file.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(loaded.SharedWith) != 1 || loaded.SharedWith[0] != reader.ID {
		t.Fatalf("expected share list [%s], got %v", reader.ID, loaded.SharedWith)
	}

	if err := files.RemoveShare(ctx, file.ID, reader.ID); err != nil {
		t.Fatalf("RemoveShare returned error: %v", err)
	}
	loaded, err = files.Get(ctx, file.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(loaded.SharedWith) != 0 {
		t.Fatalf("expected empty share list, got %v", loaded.SharedWith)
	}
}

func TestFileStore_ListVisibleTo(t *testing.T) {
	db := setupStoreTestDB(t)
	users := NewUserStore(db)
	files := NewFileStore(db)
	ctx := context.Background()

	alice := createStoreTestUser(t, users, "alice@example.com")
	bob := createStoreTestUser(t, users, "bob@example.com")
	carol := createStoreTestUser(t, users, "carol@example.com")

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	older := createStoreTestFile(t, files, alice.ID, "older.pdf", base)
	sharedByBob := createStoreTestFile(t, files, bob.ID, "bob.pdf", base.Add(time.Hour))
	newer := createStoreTestFile(t, files, alice.ID, "newer.pdf", base.Add(2*time.Hour))
	createStoreTestFile(t, files, carol.ID, "private.pdf", base.Add(3*time.Hour))

	if err := files.AddShares(ctx, sharedByBob.ID, []uuid.UUID{alice.ID}); err != nil {
		t.Fatalf("AddShares returned error: %v", err)
	}

	visible, err := files.ListVisibleTo(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListVisibleTo returned error: %v", err)
	}

	want := []uuid.UUID{newer.ID, sharedByBob.ID, older.ID}
	if len(visible) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(visible))
	}
	for i, id := range want {
		if visible[i].ID != id {
			t.Fatalf("position %d: expected %s (%s), got %s", i, id, []string{"newer", "bob", "older"}[i], visible[i].OriginalName)
		}
	}
	if !visible[1].IsSharedWith(alice.ID) {
		t.Fatal("expected shared file to carry its share list")
	}
}

func TestFileStore_LinkAndDelete(t *testing.T) {
	db := setupStoreTestDB(t)
	users := NewUserStore(db)
	files := NewFileStore(db)
	ctx := context.Background()

	owner := createStoreTestUser(t, users, "owner@example.com")
	file := createStoreTestFile(t, files, owner.ID, "scan.pdf", time.Now())

	token := "tok-1"
	expires := time.Now().Add(time.Hour).UTC()

	t.Run("rejects half a link", func(t *testing.T) {
		half := *file
		half.LinkToken = &token
		half.LinkExpiresAt = nil
		if err := files.SaveLink(ctx, &half); err == nil {
			t.Fatal("expected error when expiry is missing")
		}
	})

	t.Run("sets and clears link", func(t *testing.T) {
		file.SetLink(token, expires)
		if err := files.SaveLink(ctx, file); err != nil {
			t.Fatalf("SaveLink returned error: %v", err)
		}
		loaded, err := files.Get(ctx, file.ID)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if !loaded.HasLink() || *loaded.LinkToken != token {
			t.Fatalf("expected link %q, got %v", token, loaded.LinkToken)
		}

		file.ClearLink()
		if err := files.SaveLink(ctx, file); err != nil {
			t.Fatalf("clearing link returned error: %v", err)
		}
		loaded, err = files.Get(ctx, file.ID)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if loaded.LinkToken != nil || loaded.LinkExpiresAt != nil {
			t.Fatal("expected link fields to be cleared")
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		missing := &models.File{}
		missing.ID = uuid.New()
		missing.SetLink(token, expires)
		if err := files.SaveLink(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes record and shares", func(t *testing.T) {
		reader := createStoreTestUser(t, users, "reader@example.com")
		if err := files.AddShares(ctx, file.ID, []uuid.UUID{reader.ID}); err != nil {
			t.Fatalf("AddShares returned error: %v", err)
		}
		if err := files.Delete(ctx, file.ID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if _, err := files.Get(ctx, file.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		var count int64
		db.Model(&models.FileShare{}).Where("file_id = ?", file.ID).Count(&count)
		if count != 0 {
			t.Fatalf("expected share rows to be deleted, found %d", count)
		}
		if err := files.Delete(ctx, file.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("stored name lookup", func(t *testing.T) {
		other := createStoreTestFile(t, files, owner.ID, "lookup.pdf", time.Now())
		found, err := files.GetByStoredName(ctx, other.StoredName)
		if err != nil {
			t.Fatalf("GetByStoredName returned error: %v", err)
		}
		if found.ID != other.ID {
			t.Fatalf("expected %s, got %s", other.ID, found.ID)
		}
	})
}

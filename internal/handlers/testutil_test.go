package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/database"
	"github.com/fileshare/fileshare/internal/middleware"
	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/services"
	"github.com/fileshare/fileshare/internal/storage"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/signedurl"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	auth *services.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}

	objects := storage.NewDiskStore(t.TempDir())
	if err := objects.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("failed preparing upload dir: %v", err)
	}

	limits := config.UploadConfig{
		MaxFileSizeBytes: 64 * 1024,
		MaxFiles:         3,
		AllowedMimeTypes: config.DefaultAllowedMimeTypes,
	}
	links := config.LinkConfig{DefaultTTLHours: 24, MaxTTLHours: 720, RawURLTTL: time.Minute}

	users := store.NewUserStore(db)
	files := store.NewFileStore(db)
	authService := services.NewAuthService(users, utils.NewTokenIssuer("test-secret", time.Hour))
	uploadService := services.NewUploadService(files, objects, limits)
	fileService := services.NewFileService(files, users, objects, services.NewAccessEvaluator(),
		signedurl.New("test-secret", links.RawURLTTL), "http://files.test", links)

	app := fiber.New(fiber.Config{BodyLimit: limits.BodyLimit()})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	RegisterRoutes(app,
		NewAuthHandler(authService),
		NewFilesHandler(uploadService, fileService),
		middleware.NewAuthMiddleware(authService),
	)

	return &testEnv{app: app, db: db, auth: authService}
}

func createTestUser(t *testing.T, env *testEnv, email string) (*models.User, string) {
	t.Helper()

	session, err := env.auth.Register(context.Background(), email, "password123", "Test User")
	if err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	return session.User, session.Token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

type uploadPart struct {
	name        string
	contentType string
	content     []byte
}

func performUpload(t *testing.T, app *fiber.App, token string, parts ...uploadPart) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+part.name+`"`)
		header.Set("Content-Type", part.contentType)
		w, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed creating multipart part: %v", err)
		}
		if _, err := w.Write(part.content); err != nil {
			t.Fatalf("failed writing multipart part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	headers := authHeaders(token)
	headers["Content-Type"] = writer.FormDataContentType()
	return performRequest(t, app, http.MethodPost, "/api/files", &buf, headers)
}

// uploadTestFile uploads one file and returns its id.
func uploadTestFile(t *testing.T, env *testEnv, token, name, contentType string, content []byte) string {
	t.Helper()

	resp := performUpload(t, env.app, token, uploadPart{name: name, contentType: contentType, content: content})
	assertStatus(t, resp, fiber.StatusCreated)
	body := decodeJSONMap(t, resp)
	files := body["data"].(map[string]any)["files"].([]any)
	return files[0].(map[string]any)["id"].(string)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return raw
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuthHandlers(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("register returns user and token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email": "Alice@Example.com", "password": "password123", "name": "Alice",
		}, nil)
		assertStatus(t, resp, fiber.StatusCreated)
		body := decodeJSONMap(t, resp)
		data := body["data"].(map[string]any)
		user := data["user"].(map[string]any)
		if user["email"] != "alice@example.com" {
			t.Fatalf("expected normalized email, got %v", user["email"])
		}
		if _, leaked := user["passwordHash"]; leaked {
			t.Fatal("expected password hash to be hidden")
		}
		if token, _ := data["token"].(string); token == "" {
			t.Fatal("expected token")
		}
	})

	t.Run("duplicate registration with different case conflicts", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email": "ALICE@example.com", "password": "password123", "name": "Alice",
		}, nil)
		assertStatus(t, resp, fiber.StatusConflict)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "email already registered")
	})

	t.Run("register requires all fields", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email": "bob@example.com", "password": "password123",
		}, nil)
		assertStatus(t, resp, fiber.StatusBadRequest)
	})

	t.Run("register rejects passwords longer than 72 bytes", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email": "long@example.com", "password": strings.Repeat("p", 80), "name": "Long",
		}, nil)
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "password must be at most 72 bytes")
	})

	t.Run("login succeeds and me resolves the token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "alice@example.com", "password": "password123",
		}, nil)
		assertStatus(t, resp, fiber.StatusOK)
		token := decodeJSONMap(t, resp)["data"].(map[string]any)["token"].(string)

		resp = performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)
		user := decodeJSONMap(t, resp)["data"].(map[string]any)["user"].(map[string]any)
		if user["email"] != "alice@example.com" {
			t.Fatalf("unexpected user %v", user)
		}
	})

	t.Run("login failures are indistinguishable", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "alice@example.com", "password": "wrong",
		}, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "invalid credentials")

		resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "nobody@example.com", "password": "password123",
		}, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "invalid credentials")
	})

	t.Run("me without token", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, nil)
		assertStatus(t, resp, fiber.StatusUnauthorized)
	})

	t.Run("change password", func(t *testing.T) {
		_, token := createTestUser(t, env, "carol@example.com")

		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]any{
			"currentPassword": "wrong", "newPassword": "new-password",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusUnauthorized)

		resp = performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]any{
			"currentPassword": "password123", "newPassword": strings.Repeat("n", 73),
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)

		resp = performJSONRequest(t, env.app, http.MethodPut, "/api/auth/password", map[string]any{
			"currentPassword": "password123", "newPassword": "new-password",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		resp = performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "carol@example.com", "password": "new-password",
		}, nil)
		assertStatus(t, resp, fiber.StatusOK)
	})
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		resp := performRequest(t, env.app, http.MethodGet, path, nil, nil)
		assertStatus(t, resp, fiber.StatusOK)
		if body := decodeJSONMap(t, resp); body["status"] != "ok" {
			t.Fatalf("unexpected health body %v", body)
		}
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	InfoWithUser("user-1", "file_uploaded", map[string]interface{}{"file_id": "abc"})
	Error("storage_failed", errors.New("disk full"), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}

	var first LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if first.Level != LevelInfo || first.Action != "file_uploaded" {
		t.Fatalf("unexpected entry: %+v", first)
	}
	if first.UserID == nil || *first.UserID != "user-1" {
		t.Fatalf("expected user id user-1, got %v", first.UserID)
	}

	var second LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}
	if second.Level != LevelError || second.Error != "disk full" {
		t.Fatalf("unexpected error entry: %+v", second)
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	body := map[string]interface{}{
		"email":           "a@example.com",
		"password":        "hunter22",
		"currentPassword": "old",
		"newPassword":     "new",
	}
	redactSensitiveFields(body)

	for _, field := range []string{"password", "currentPassword", "newPassword"} {
		if body[field] != "[REDACTED]" {
			t.Errorf("expected %s to be redacted, got %v", field, body[field])
		}
	}
	if body["email"] != "a@example.com" {
		t.Errorf("expected email to be kept, got %v", body["email"])
	}
}

func TestLoggerWritesPlainJSONToAnyWriter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	Warn("link_rejected", map[string]interface{}{"reason": "expired"})
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("expected no terminal escape codes, got %q", buf.String())
	}

	buf.Reset()
	SetOutput(nil)
	Info("dropped", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nil output to discard entries, got %q", buf.String())
	}
}

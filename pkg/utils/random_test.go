package utils

import (
	"encoding/base64"
	"testing"
)

func TestGenerateLinkToken(t *testing.T) {
	first, err := GenerateLinkToken()
	if err != nil {
		t.Fatalf("GenerateLinkToken returned error: %v", err)
	}
	second, err := GenerateLinkToken()
	if err != nil {
		t.Fatalf("GenerateLinkToken returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected two generated tokens to differ")
	}

	raw, err := base64.RawURLEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("expected URL-safe base64 token, got %q: %v", first, err)
	}
	if len(raw) != linkTokenBytes {
		t.Fatalf("expected %d random bytes, got %d", linkTokenBytes, len(raw))
	}
}

package signedurl

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	signer := New("raw-secret", 15*time.Minute).WithClock(func() time.Time { return base })

	sig, expiresAt, err := signer.Sign("a1b2.pdf")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if !expiresAt.Equal(base.Add(15 * time.Minute)) {
		t.Fatalf("expected expiry %s, got %s", base.Add(15*time.Minute), expiresAt)
	}

	t.Run("accepts fresh signature for the same name", func(t *testing.T) {
		if err := signer.Verify("a1b2.pdf", sig); err != nil {
			t.Fatalf("expected signature to verify, got %v", err)
		}
	})

	t.Run("rejects other object names", func(t *testing.T) {
		if err := signer.Verify("other.pdf", sig); !errors.Is(err, ErrMismatch) {
			t.Fatalf("expected ErrMismatch, got %v", err)
		}
	})

	t.Run("rejects at the expiry instant", func(t *testing.T) {
		atExpiry := signer.WithClock(func() time.Time { return expiresAt })
		if err := atExpiry.Verify("a1b2.pdf", sig); !errors.Is(err, ErrExpired) {
			t.Fatalf("expected ErrExpired, got %v", err)
		}
	})

	t.Run("rejects a different secret", func(t *testing.T) {
		other := New("other-secret", 15*time.Minute).WithClock(func() time.Time { return base })
		if err := other.Verify("a1b2.pdf", sig); !errors.Is(err, ErrSignature) {
			t.Fatalf("expected ErrSignature, got %v", err)
		}
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		dataPart, macPart, _ := strings.Cut(sig, ".")
		tampered := dataPart + "A." + macPart
		if err := signer.Verify("a1b2.pdf", tampered); err == nil {
			t.Fatal("expected tampered signature to be rejected")
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{"", "nodot", ".", "abc."} {
			if err := signer.Verify("a1b2.pdf", input); !errors.Is(err, ErrMalformed) {
				t.Errorf("input %q: expected ErrMalformed, got %v", input, err)
			}
		}
	})
}

// Package signedurl mints and checks short-lived HMAC signatures that grant
// access to a single stored object path.
package signedurl

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const DefaultTTL = 15 * time.Minute

var (
	ErrMalformed = errors.New("malformed signature")
	ErrSignature = errors.New("invalid signature")
	ErrExpired   = errors.New("signature expired")
	ErrMismatch  = errors.New("signature does not match object")
)

type payload struct {
	Name      string `json:"n"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nce"`
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) WithClock(now func() time.Time) *Signer {
	clone := *s
	clone.now = now
	return &clone
}

// Sign returns a signature for name and the instant it stops being accepted.
func (s *Signer) Sign(name string) (string, time.Time, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, err
	}

	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	data, err := json.Marshal(payload{
		Name:      name,
		ExpiresAt: expiresAt.Unix(),
		Nonce:     hex.EncodeToString(nonce),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	return base64.RawURLEncoding.EncodeToString(data) + "." + s.mac(data), expiresAt, nil
}

// Verify checks that sig was produced by this signer for name and has not expired.
func (s *Signer) Verify(name, sig string) error {
	dataPart, macPart, ok := strings.Cut(sig, ".")
	if !ok || dataPart == "" || macPart == "" {
		return ErrMalformed
	}

	data, err := base64.RawURLEncoding.DecodeString(dataPart)
	if err != nil {
		return ErrMalformed
	}

	if !hmac.Equal([]byte(s.mac(data)), []byte(macPart)) {
		return ErrSignature
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return ErrMalformed
	}
	if p.Name != name {
		return ErrMismatch
	}
	if !time.Unix(p.ExpiresAt, 0).After(s.now()) {
		return ErrExpired
	}
	return nil
}

func (s *Signer) mac(data []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

package utils

import (
	"crypto/rand"
	"encoding/base64"
)

const linkTokenBytes = 32

// GenerateLinkToken returns an unguessable, URL-safe share-link token.
func GenerateLinkToken() (string, error) {
	raw := make([]byte, linkTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

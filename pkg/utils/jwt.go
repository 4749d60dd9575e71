package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenLifetime = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uuid.UUID `json:"userID"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens with a server-held secret.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenIssuer{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// WithClock returns a copy of the issuer that reads the current time from now.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *i
	clone.now = now
	return &clone
}

func (i *TokenIssuer) Lifetime() time.Duration {
	return i.lifetime
}

func (i *TokenIssuer) Generate(userID uuid.UUID, email string) (string, error) {
	issuedAt := i.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.lifetime)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	return claims, nil
}

// Package token mints and verifies the signed JWTs carried by the session
// cookie. The token only proves possession; authorization state lives in
// the session store.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"velofit/internal/auth/models"
)

// Signer signs and parses session tokens with a shared HMAC key.
type Signer struct {
	key []byte
}

// New creates a Signer. The key must be non-empty.
func New(key string) (*Signer, error) {
	if key == "" {
		return nil, errors.New("signing key is required")
	}
	return &Signer{key: []byte(key)}, nil
}

// Mint produces a signed token for the session.
func (s *Signer) Mint(session *models.Session) (string, error) {
	if session == nil {
		return "", errors.New("session is required")
	}

	claims := jwt.MapClaims{
		"sid": session.ID.String(),
		"sub": session.Email,
		"iat": session.CreatedAt.Unix(),
		"exp": session.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and extracts the session ID.
// Expired or tampered tokens fail verification here, before any store lookup.
func (s *Signer) Parse(raw string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sid claim")
	}
	id, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse sid claim: %w", err)
	}
	return id, nil
}

// TTLUntil returns the remaining lifetime of a session at now, floored at zero.
func TTLUntil(session *models.Session, now time.Time) time.Duration {
	ttl := session.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

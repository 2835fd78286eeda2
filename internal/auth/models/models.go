// Package models defines session state for signed-in riders.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "velofit/pkg/domain-errors"
)

// Session is one signed-in browser. Sessions are keyed by ID and carry the
// rider's email as the subject; there is no separate user table in this
// service, the email is the identity.
type Session struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	DeviceDisplayName string    `json:"device_display_name"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	LastSeenAt        time.Time `json:"last_seen_at"`
}

// NewSession creates a session with domain invariant validation.
func NewSession(email, deviceDisplayName string, now time.Time, ttl time.Duration) (*Session, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ttl must be positive")
	}
	return &Session{
		ID:                uuid.New(),
		Email:             email,
		DeviceDisplayName: deviceDisplayName,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
		LastSeenAt:        now,
	}, nil
}

// IsExpired reports whether the session is past its expiry at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

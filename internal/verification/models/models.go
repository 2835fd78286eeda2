// Package models defines verification-code records for email sign-in.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "velofit/pkg/domain-errors"
)

// CodeTTL is how long an issued code stays redeemable.
const CodeTTL = 10 * time.Minute

// Code is one issued verification code. Only the bcrypt hash of the digits
// is stored; the cleartext exists only in the outbound mail.
type Code struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CodeHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// NewCode creates a code record with domain invariant validation.
func NewCode(email string, codeHash []byte, now time.Time) (*Code, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if len(codeHash) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "code hash cannot be empty")
	}
	return &Code{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  codeHash,
		CreatedAt: now,
		ExpiresAt: now.Add(CodeTTL),
	}, nil
}

// IsExpired reports whether the code is past its expiry at the given time.
func (c *Code) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

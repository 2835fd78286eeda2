// Package models defines the durable rate limiter's record shape and key
// construction.
package models

import (
	"strings"
	"time"

	dErrors "velofit/pkg/domain-errors"
)

// NamespaceEmailVerification scopes rate limit records that gate
// verification-code issuance.
const NamespaceEmailVerification = "email_verification"

// AttemptRecord is the durable state of one token bucket, one row per
// identifier.
//
// AttemptsLeft stays within [0, MaxAttempts] and is fractional between
// refills: the bucket refills continuously, not in integer steps. It only
// decreases by the single debit of a successful consume; failed consumes
// leave the record untouched.
type AttemptRecord struct {
	Identifier    string    `json:"identifier"`
	AttemptsLeft  float64   `json:"attempts_left"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// NewAttemptRecord creates a record with domain invariant validation.
func NewAttemptRecord(identifier string, attemptsLeft float64, lastAttemptAt time.Time) (*AttemptRecord, error) {
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identifier cannot be empty")
	}
	if attemptsLeft < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attempts_left cannot be negative")
	}
	return &AttemptRecord{
		Identifier:    identifier,
		AttemptsLeft:  attemptsLeft,
		LastAttemptAt: lastAttemptAt,
	}, nil
}

// Key builds the namespaced identifier for a rate limited subject.
// The subject is trimmed and lowercased so case and whitespace variants of
// the same subject share one record.
func Key(namespace, subject string) string {
	return namespace + ":" + strings.ToLower(strings.TrimSpace(subject))
}

package email

import "strings"

// Normalize canonicalizes an email address for storage and rate limit keys:
// trimmed and lowercased, so case/whitespace variants collapse to one subject.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValid performs lightweight validation of an email address format.
func IsValid(email string) bool {
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if parts[0] == "" || parts[1] == "" {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}

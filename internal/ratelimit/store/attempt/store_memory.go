package attempt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"velofit/internal/ratelimit/models"
	"velofit/internal/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested record does not exist
// - Return ErrConflict when an insert races an existing row or a
//   compare-and-swap update observes different prior state
// - Return wrapped errors with context for infrastructure failures
// InMemoryStore keeps attempt records in memory for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.AttemptRecord
}

// New constructs an empty in-memory attempt store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.AttemptRecord)}
}

// Find returns the record for an identifier, or ErrNotFound.
func (s *InMemoryStore) Find(_ context.Context, identifier string) (*models.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[identifier]
	if !ok {
		return nil, fmt.Errorf("attempt record not found: %w", sentinel.ErrNotFound)
	}
	copied := rec
	return &copied, nil
}

// Insert creates the record, failing with ErrConflict if one already exists
// for the identifier. Uniqueness per identifier is enforced here.
func (s *InMemoryStore) Insert(_ context.Context, rec *models.AttemptRecord) error {
	if rec == nil {
		return fmt.Errorf("attempt record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Identifier]; ok {
		return fmt.Errorf("attempt record already exists: %w", sentinel.ErrConflict)
	}
	s.records[rec.Identifier] = *rec
	return nil
}

// Update patches the record only when the stored state still matches the
// prior state the caller read, so concurrent consumes for the same
// identifier cannot both debit the same attempt.
func (s *InMemoryStore) Update(_ context.Context, rec *models.AttemptRecord, prevAttemptsLeft float64, prevLastAttemptAt time.Time) error {
	if rec == nil {
		return fmt.Errorf("attempt record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[rec.Identifier]
	if !ok {
		return fmt.Errorf("attempt record not found: %w", sentinel.ErrNotFound)
	}
	if current.AttemptsLeft != prevAttemptsLeft || !current.LastAttemptAt.Equal(prevLastAttemptAt) {
		return fmt.Errorf("attempt record changed concurrently: %w", sentinel.ErrConflict)
	}
	s.records[rec.Identifier] = *rec
	return nil
}

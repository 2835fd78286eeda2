package code

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"velofit/internal/sentinel"
	"velofit/internal/verification/models"
)

// InMemoryStore keeps verification codes in memory for tests and development.
type InMemoryStore struct {
	mu    sync.RWMutex
	codes map[uuid.UUID]models.Code
}

// New constructs an empty in-memory code store.
func New() *InMemoryStore {
	return &InMemoryStore{codes: make(map[uuid.UUID]models.Code)}
}

func (s *InMemoryStore) Insert(_ context.Context, c *models.Code) error {
	if c == nil {
		return fmt.Errorf("code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.ID] = *c
	return nil
}

// FindActive returns the newest unconsumed, unexpired code for the email.
func (s *InMemoryStore) FindActive(_ context.Context, email string, now time.Time) (*models.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *models.Code
	for id := range s.codes {
		c := s.codes[id]
		if c.Email != email || c.Consumed || c.IsExpired(now) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			copied := c
			newest = &copied
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("active code not found: %w", sentinel.ErrNotFound)
	}
	return newest, nil
}

// MarkConsumed flips the single-use flag for a redeemed code.
func (s *InMemoryStore) MarkConsumed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[id]
	if !ok {
		return fmt.Errorf("code not found: %w", sentinel.ErrNotFound)
	}
	if c.Consumed {
		return fmt.Errorf("code already consumed: %w", sentinel.ErrAlreadyUsed)
	}
	c.Consumed = true
	s.codes[id] = c
	return nil
}

// DeleteExpired removes expired and consumed codes, returning the count.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, c := range s.codes {
		if c.Consumed || c.IsExpired(now) {
			delete(s.codes, id)
			deleted++
		}
	}
	return deleted, nil
}

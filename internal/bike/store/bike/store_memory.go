// Package bike persists bike records. The in-memory store backs tests and
// development; Postgres is the production store.
package bike

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"velofit/internal/bike/models"
	"velofit/internal/sentinel"
)

// InMemoryStore is a thread-safe map-backed bike store.
type InMemoryStore struct {
	mu    sync.RWMutex
	bikes map[uuid.UUID]models.Bike
}

// New creates an empty in-memory bike store.
func New() *InMemoryStore {
	return &InMemoryStore{bikes: make(map[uuid.UUID]models.Bike)}
}

func (s *InMemoryStore) Insert(_ context.Context, bike *models.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bikes[bike.ID]; exists {
		return fmt.Errorf("bike already exists: %w", sentinel.ErrConflict)
	}
	s.bikes[bike.ID] = *bike
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bike, ok := s.bikes[id]
	if !ok {
		return nil, fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
	}
	copied := bike
	return &copied, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerEmail string) ([]models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Bike
	for _, bike := range s.bikes {
		if bike.OwnerEmail == ownerEmail {
			out = append(out, bike)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, bike *models.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[bike.ID]; !ok {
		return fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
	}
	s.bikes[bike.ID] = *bike
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[id]; !ok {
		return fmt.Errorf("bike not found: %w", sentinel.ErrNotFound)
	}
	delete(s.bikes, id)
	return nil
}

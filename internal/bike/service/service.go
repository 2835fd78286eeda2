// Package service owns bike CRUD for authenticated riders. Ownership is
// enforced here so no handler can reach another rider's bikes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"velofit/internal/bike/models"
	"velofit/internal/sentinel"
	dErrors "velofit/pkg/domain-errors"
)

// Store persists bikes.
type Store interface {
	Insert(ctx context.Context, bike *models.Bike) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bike, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]models.Bike, error)
	Update(ctx context.Context, bike *models.Bike) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service provides owner-scoped bike operations.
type Service struct {
	bikes  Store
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates the bike service.
func New(bikes Store, opts ...Option) (*Service, error) {
	if bikes == nil {
		return nil, errors.New("bike store is required")
	}

	svc := &Service{
		bikes:  bikes,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput carries the fields for a new bike.
type CreateInput struct {
	Name           string
	Kind           models.Kind
	StackMM        int
	ReachMM        int
	SaddleHeightMM int
}

// Create records a new bike for the owner.
func (s *Service) Create(ctx context.Context, ownerEmail string, in CreateInput) (*models.Bike, error) {
	bike, err := models.NewBike(ownerEmail, in.Name, in.Kind, in.StackMM, in.ReachMM, in.SaddleHeightMM, s.clock())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	if err := s.bikes.Insert(ctx, bike); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save bike")
	}
	s.logger.InfoContext(ctx, "bike created", "bike_id", bike.ID, "kind", bike.Kind)
	return bike, nil
}

// List returns the owner's bikes in creation order.
func (s *Service) List(ctx context.Context, ownerEmail string) ([]models.Bike, error) {
	bikes, err := s.bikes.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list bikes")
	}
	return bikes, nil
}

// Get loads one bike, verifying ownership. A bike owned by someone else is
// reported as not found rather than forbidden, so IDs cannot be probed.
func (s *Service) Get(ctx context.Context, ownerEmail string, id uuid.UUID) (*models.Bike, error) {
	bike, err := s.bikes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "bike not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bike")
	}
	if bike.OwnerEmail != ownerEmail {
		return nil, dErrors.New(dErrors.CodeNotFound, "bike not found")
	}
	return bike, nil
}

// Update replaces a bike's name and fit values.
func (s *Service) Update(ctx context.Context, ownerEmail string, id uuid.UUID, in CreateInput) (*models.Bike, error) {
	bike, err := s.Get(ctx, ownerEmail, id)
	if err != nil {
		return nil, err
	}
	if err := bike.Update(in.Name, in.Kind, in.StackMM, in.ReachMM, in.SaddleHeightMM, s.clock()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	if err := s.bikes.Update(ctx, bike); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bike")
	}
	return bike, nil
}

// Delete removes a bike the owner holds.
func (s *Service) Delete(ctx context.Context, ownerEmail string, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerEmail, id); err != nil {
		return err
	}
	if err := s.bikes.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "bike not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete bike")
	}
	s.logger.InfoContext(ctx, "bike deleted", "bike_id", id)
	return nil
}

// Package models defines bikes and their fit geometry.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind categorizes a bike for fit interpretation.
type Kind string

const (
	KindRoad     Kind = "road"
	KindGravel   Kind = "gravel"
	KindMountain Kind = "mtb"
	KindTT       Kind = "tt"
	KindCity     Kind = "city"
)

var validKinds = map[Kind]struct{}{
	KindRoad:     {},
	KindGravel:   {},
	KindMountain: {},
	KindTT:       {},
	KindCity:     {},
}

// ParseKind validates a bike kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validKinds[k]; !ok {
		return "", errors.New("unknown bike kind")
	}
	return k, nil
}

// Bike is a rider's bike with its recorded fit coordinates, in millimeters.
type Bike struct {
	ID             uuid.UUID `json:"id"`
	OwnerEmail     string    `json:"-"`
	Name           string    `json:"name"`
	Kind           Kind      `json:"kind"`
	StackMM        int       `json:"stack_mm"`
	ReachMM        int       `json:"reach_mm"`
	SaddleHeightMM int       `json:"saddle_height_mm"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewBike validates and constructs a bike record.
func NewBike(ownerEmail, name string, kind Kind, stackMM, reachMM, saddleHeightMM int, now time.Time) (*Bike, error) {
	if ownerEmail == "" {
		return nil, errors.New("owner email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("bike name is required")
	}
	if _, ok := validKinds[kind]; !ok {
		return nil, errors.New("unknown bike kind")
	}
	if err := validateGeometry(stackMM, reachMM, saddleHeightMM); err != nil {
		return nil, err
	}

	return &Bike{
		ID:             uuid.New(),
		OwnerEmail:     ownerEmail,
		Name:           name,
		Kind:           kind,
		StackMM:        stackMM,
		ReachMM:        reachMM,
		SaddleHeightMM: saddleHeightMM,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func validateGeometry(stackMM, reachMM, saddleHeightMM int) error {
	if stackMM < 300 || stackMM > 800 {
		return errors.New("stack must be between 300 and 800 mm")
	}
	if reachMM < 250 || reachMM > 600 {
		return errors.New("reach must be between 250 and 600 mm")
	}
	if saddleHeightMM < 500 || saddleHeightMM > 900 {
		return errors.New("saddle height must be between 500 and 900 mm")
	}
	return nil
}

// Update applies new fit values after validation.
func (b *Bike) Update(name string, kind Kind, stackMM, reachMM, saddleHeightMM int, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("bike name is required")
	}
	if _, ok := validKinds[kind]; !ok {
		return errors.New("unknown bike kind")
	}
	if err := validateGeometry(stackMM, reachMM, saddleHeightMM); err != nil {
		return err
	}

	b.Name = name
	b.Kind = kind
	b.StackMM = stackMM
	b.ReachMM = reachMM
	b.SaddleHeightMM = saddleHeightMM
	b.UpdatedAt = now
	return nil
}

// StackReachRatio is the classic aggressiveness measure: higher is more
// upright, lower is more aggressive.
func (b *Bike) StackReachRatio() float64 {
	if b.ReachMM == 0 {
		return 0
	}
	return float64(b.StackMM) / float64(b.ReachMM)
}

// FitSummary labels the riding position derived from the stack/reach ratio.
type FitSummary struct {
	StackReachRatio float64 `json:"stack_reach_ratio"`
	Position        string  `json:"position"`
}

// Fit computes the fit summary for the bike.
func (b *Bike) Fit() FitSummary {
	ratio := b.StackReachRatio()
	position := "balanced"
	switch {
	case ratio == 0:
		position = "unknown"
	case ratio < 1.45:
		position = "aggressive"
	case ratio > 1.55:
		position = "endurance"
	}
	return FitSummary{StackReachRatio: ratio, Position: position}
}

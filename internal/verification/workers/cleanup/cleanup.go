// Package cleanup periodically prunes stale verification-code rows.
// Rate limit attempt records are never pruned: their history is what makes
// the refill math correct across restarts.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CodeStore exposes cleanup for expired and consumed verification codes.
type CodeStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Result summarizes the deletions performed by a cleanup run.
type Result struct {
	DeletedCodes int
	Duration     time.Duration
}

// Service periodically removes stale verification codes.
type Service struct {
	codes    CodeStore
	interval time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

// Option configures the cleanup Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
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

// New constructs a cleanup Service with required stores and options applied.
func New(codes CodeStore, opts ...Option) (*Service, error) {
	if codes == nil {
		return nil, fmt.Errorf("code store is required")
	}
	svc := &Service{
		codes:    codes,
		interval: 5 * time.Minute,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "verification cleanup failed", "error", err)
				continue
			}
			s.logger.InfoContext(ctx, "verification cleanup completed",
				"deleted_codes", res.DeletedCodes,
				"duration_ms", res.Duration.Milliseconds(),
			)
		case <-ctx.Done():
			s.logger.Info("verification cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single cleanup run. Logging is handled by the caller (Start).
func (s *Service) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	deleted, err := s.codes.DeleteExpired(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("delete expired codes: %w", err)
	}
	return &Result{DeletedCodes: deleted, Duration: time.Since(start)}, nil
}

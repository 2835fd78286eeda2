// Package service implements the durable token-bucket rate limiter gating
// verification-code issuance.
//
// The bucket refills continuously: a subject that waits half the window
// after exhausting the bucket regains half the attempts, not zero. State
// survives process restarts because it lives in the attempt store, and the
// read-check-write sequence is guarded by a compare-and-swap on the prior
// record state so concurrent consumes for the same identifier cannot
// over-admit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"velofit/internal/platform/metrics"
	"velofit/internal/ratelimit/config"
	"velofit/internal/ratelimit/models"
	"velofit/internal/ratelimit/tracer"
	"velofit/internal/sentinel"
	dErrors "velofit/pkg/domain-errors"
)

// ExceededMessage is the fixed user-facing rejection message.
const ExceededMessage = "Too many verification requests. Please try again later."

// casRetries bounds how often a consume re-reads after losing the
// compare-and-swap race before giving up.
const casRetries = 3

// Store is the durable record store the limiter consumes: point lookup by
// identifier, insert, and a conditional patch keyed on the prior state.
type Store interface {
	Find(ctx context.Context, identifier string) (*models.AttemptRecord, error)
	Insert(ctx context.Context, rec *models.AttemptRecord) error
	Update(ctx context.Context, rec *models.AttemptRecord, prevAttemptsLeft float64, prevLastAttemptAt time.Time) error
}

// Limiter enforces the per-identifier token bucket.
// Thread-safe for concurrent use across identifiers; same-identifier races
// are resolved by the store's compare-and-swap.
type Limiter struct {
	store     Store
	namespace string
	config    config.Config
	clock     func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConfig overrides the default bucket parameters.
func WithConfig(cfg config.Config) Option {
	return func(l *Limiter) {
		l.config = cfg
	}
}

// WithClock injects the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithTracer sets the tracer for consume spans.
func WithTracer(t tracer.Tracer) Option {
	return func(l *Limiter) {
		if t != nil {
			l.tracer = t
		}
	}
}

// New creates a limiter over the given store and key namespace.
func New(store Store, namespace string, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("attempt store is required")
	}
	if namespace == "" {
		return nil, errors.New("namespace is required")
	}

	l := &Limiter{
		store:     store,
		namespace: namespace,
		config:    config.DefaultConfig(),
		clock:     time.Now,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Consume debits one attempt for the subject, or fails with a rate_limited
// domain error when no attempt is available.
//
// The first-ever consume for an identifier always succeeds and creates the
// record with a full bucket minus one. A rejected consume never mutates the
// record: hammering a throttled identifier does not delay its refill.
func (l *Limiter) Consume(ctx context.Context, subject string) (err error) {
	identifier := models.Key(l.namespace, subject)

	ctx, span := l.tracer.Start(ctx, tracer.SpanConsume,
		tracer.String(tracer.AttrNamespace, l.namespace),
	)
	defer func() { span.End(err) }()

	for attempt := 0; attempt < casRetries; attempt++ {
		now := l.clock()

		rec, findErr := l.store.Find(ctx, identifier)
		if errors.Is(findErr, sentinel.ErrNotFound) {
			created, newErr := models.NewAttemptRecord(identifier, float64(l.config.MaxAttempts)-1, now)
			if newErr != nil {
				return newErr
			}
			insertErr := l.store.Insert(ctx, created)
			if errors.Is(insertErr, sentinel.ErrConflict) {
				// Lost the race against another first consume; re-read.
				l.recordRetry()
				continue
			}
			if insertErr != nil {
				return dErrors.Wrap(insertErr, dErrors.CodeInternal, "failed to create attempt record")
			}
			l.recordOutcome("allowed")
			return nil
		}
		if findErr != nil {
			return dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to load attempt record")
		}

		// Clock regression never refunds negative attempts.
		elapsed := now.Sub(rec.LastAttemptAt)
		if elapsed < 0 {
			elapsed = 0
		}
		available := rec.AttemptsLeft + elapsed.Seconds()*l.config.RefillPerSecond()
		if max := float64(l.config.MaxAttempts); available > max {
			available = max
		}

		if available < 1 {
			l.recordOutcome("rejected")
			span.SetAttributes(tracer.Float64(tracer.AttrAvailable, available))
			return dErrors.New(dErrors.CodeRateLimited, ExceededMessage)
		}

		updated := &models.AttemptRecord{
			Identifier:    identifier,
			AttemptsLeft:  available - 1,
			LastAttemptAt: now,
		}
		updateErr := l.store.Update(ctx, updated, rec.AttemptsLeft, rec.LastAttemptAt)
		if errors.Is(updateErr, sentinel.ErrConflict) {
			l.recordRetry()
			continue
		}
		if updateErr != nil {
			return dErrors.Wrap(updateErr, dErrors.CodeInternal, "failed to update attempt record")
		}
		l.recordOutcome("allowed")
		return nil
	}

	l.logger.WarnContext(ctx, "rate limiter exhausted cas retries", "namespace", l.namespace)
	return dErrors.New(dErrors.CodeConflict, "rate limit record contention, try again")
}

func (l *Limiter) recordOutcome(outcome string) {
	if l.metrics != nil {
		l.metrics.RecordConsume(outcome)
	}
}

func (l *Limiter) recordRetry() {
	if l.metrics != nil {
		l.metrics.RateLimitRetries.Inc()
	}
}

// IsRateLimited reports whether an error is the limiter's rejection.
func IsRateLimited(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeRateLimited)
}

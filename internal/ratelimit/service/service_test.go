package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velofit/internal/ratelimit/models"
	"velofit/internal/ratelimit/store/attempt"
	"velofit/internal/ratelimit/tracer"
	"velofit/internal/sentinel"
	dErrors "velofit/pkg/domain-errors"
)

// fakeClock is an adjustable time source for refill math.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T) (*Limiter, *attempt.InMemoryStore, *fakeClock) {
	t.Helper()
	store := attempt.New()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	limiter, err := New(store, models.NamespaceEmailVerification, WithClock(clock.Now))
	require.NoError(t, err)
	return limiter, store, clock
}

func mustFind(t *testing.T, store *attempt.InMemoryStore, identifier string) *models.AttemptRecord {
	t.Helper()
	rec, err := store.Find(context.Background(), identifier)
	require.NoError(t, err)
	return rec
}

func TestConsume_FirstAttemptCreatesRecord(t *testing.T) {
	limiter, store, clock := newTestLimiter(t)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "rider@example.com"))

	rec := mustFind(t, store, "email_verification:rider@example.com")
	assert.Equal(t, 2.0, rec.AttemptsLeft)
	assert.Equal(t, clock.Now(), rec.LastAttemptAt)
}

func TestConsume_NormalizesSubject(t *testing.T) {
	limiter, store, _ := newTestLimiter(t)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "  Rider@Example.COM "))
	require.NoError(t, limiter.Consume(ctx, "rider@example.com"))

	// Case and whitespace variants share one record.
	rec := mustFind(t, store, "email_verification:rider@example.com")
	assert.InDelta(t, 1.0, rec.AttemptsLeft, 1e-9)
}

func TestConsume_ExhaustionRejectsFourth(t *testing.T) {
	limiter, store, _ := newTestLimiter(t)
	ctx := context.Background()
	const subject = "rider@example.com"
	const identifier = "email_verification:" + subject

	for i := range 3 {
		require.NoError(t, limiter.Consume(ctx, subject), "consume %d", i+1)
	}
	rec := mustFind(t, store, identifier)
	assert.InDelta(t, 0.0, rec.AttemptsLeft, 1e-9)

	err := limiter.Consume(ctx, subject)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.EqualError(t, err, ExceededMessage)

	// The failed attempt must not consume budget or reset the timer.
	after := mustFind(t, store, identifier)
	assert.Equal(t, rec, after)
}

func TestConsume_FullWindowRefillsToCap(t *testing.T) {
	limiter, store, clock := newTestLimiter(t)
	ctx := context.Background()
	const subject = "rider@example.com"

	for range 3 {
		require.NoError(t, limiter.Consume(ctx, subject))
	}

	clock.Advance(15 * time.Minute)
	require.NoError(t, limiter.Consume(ctx, subject))

	// Full refill, capped at 3, then debited by one.
	rec := mustFind(t, store, "email_verification:"+subject)
	assert.InDelta(t, 2.0, rec.AttemptsLeft, 1e-9)
}

func TestConsume_PartialRefill(t *testing.T) {
	limiter, store, clock := newTestLimiter(t)
	ctx := context.Background()
	const subject = "rider@example.com"

	for range 3 {
		require.NoError(t, limiter.Consume(ctx, subject))
	}

	// Half the window refills half the bucket: available = 1.5.
	clock.Advance(7*time.Minute + 30*time.Second)
	require.NoError(t, limiter.Consume(ctx, subject))

	rec := mustFind(t, store, "email_verification:"+subject)
	assert.InDelta(t, 0.5, rec.AttemptsLeft, 1e-9)
}

func TestConsume_RejectedWhileUnderOneAttempt(t *testing.T) {
	limiter, _, clock := newTestLimiter(t)
	ctx := context.Background()
	const subject = "rider@example.com"

	for range 3 {
		require.NoError(t, limiter.Consume(ctx, subject))
	}

	// A quarter window refills 0.75 attempts: still rejected.
	clock.Advance(3*time.Minute + 45*time.Second)
	err := limiter.Consume(ctx, subject)
	assert.True(t, IsRateLimited(err))

	// Another quarter window accumulates past 1 because the rejection
	// did not reset the timer.
	clock.Advance(3*time.Minute + 45*time.Second)
	assert.NoError(t, limiter.Consume(ctx, subject))
}

func TestConsume_ClockRegressionNeverRefundsNegative(t *testing.T) {
	limiter, store, clock := newTestLimiter(t)
	ctx := context.Background()
	const subject = "rider@example.com"

	require.NoError(t, limiter.Consume(ctx, subject))

	clock.Advance(-time.Hour)
	require.NoError(t, limiter.Consume(ctx, subject))

	rec := mustFind(t, store, "email_verification:"+subject)
	assert.InDelta(t, 1.0, rec.AttemptsLeft, 1e-9)
}

func TestConsume_IndependentIdentifiers(t *testing.T) {
	limiter, _, _ := newTestLimiter(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.Consume(ctx, "a@example.com"))
	}
	assert.True(t, IsRateLimited(limiter.Consume(ctx, "a@example.com")))
	assert.NoError(t, limiter.Consume(ctx, "b@example.com"), "other identifiers are unaffected")
}

// conflictingStore wraps the memory store and forces the first n Update
// calls to report a compare-and-swap conflict.
type conflictingStore struct {
	*attempt.InMemoryStore
	conflicts int
	updates   int
}

func (s *conflictingStore) Update(ctx context.Context, rec *models.AttemptRecord, prevAttemptsLeft float64, prevLastAttemptAt time.Time) error {
	s.updates++
	if s.conflicts > 0 {
		s.conflicts--
		return sentinel.ErrConflict
	}
	return s.InMemoryStore.Update(ctx, rec, prevAttemptsLeft, prevLastAttemptAt)
}

func TestConsume_RetriesOnCASConflict(t *testing.T) {
	store := &conflictingStore{InMemoryStore: attempt.New(), conflicts: 1}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	limiter, err := New(store, models.NamespaceEmailVerification, WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "rider@example.com"))
	require.NoError(t, limiter.Consume(ctx, "rider@example.com"))
	assert.Equal(t, 2, store.updates, "one conflicted update plus the successful retry")
}

func TestConsume_GivesUpAfterBoundedRetries(t *testing.T) {
	store := &conflictingStore{InMemoryStore: attempt.New(), conflicts: 100}
	limiter, err := New(store, models.NamespaceEmailVerification)
	require.NoError(t, err)
	ctx := context.Background()

	// Seed the record so Consume goes down the update path.
	require.NoError(t, store.Insert(ctx, &models.AttemptRecord{
		Identifier:    "email_verification:rider@example.com",
		AttemptsLeft:  3,
		LastAttemptAt: time.Now(),
	}))

	err = limiter.Consume(ctx, "rider@example.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

// recordingTracer captures every span the limiter starts.
type recordingTracer struct {
	spans []*recordedSpan
}

type recordedSpan struct {
	name  string
	attrs []tracer.Attribute
	ended bool
	err   error
}

func (r *recordingTracer) Start(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	span := &recordedSpan{name: name, attrs: attrs}
	r.spans = append(r.spans, span)
	return ctx, span
}

func (s *recordedSpan) SetAttributes(attrs ...tracer.Attribute) {
	s.attrs = append(s.attrs, attrs...)
}

func (s *recordedSpan) End(err error) {
	s.ended = true
	s.err = err
}

func attrValue(attrs []tracer.Attribute, key string) (any, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

func TestConsume_EmitsSpanPerConsume(t *testing.T) {
	tr := &recordingTracer{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	limiter, err := New(attempt.New(), models.NamespaceEmailVerification,
		WithClock(clock.Now), WithTracer(tr))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "rider@example.com"))

	require.Len(t, tr.spans, 1)
	span := tr.spans[0]
	assert.Equal(t, tracer.SpanConsume, span.name)
	assert.True(t, span.ended)
	assert.NoError(t, span.err)

	ns, ok := attrValue(span.attrs, tracer.AttrNamespace)
	require.True(t, ok)
	assert.Equal(t, models.NamespaceEmailVerification, ns)
}

func TestConsume_RejectionSpanCarriesAvailable(t *testing.T) {
	tr := &recordingTracer{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	limiter, err := New(attempt.New(), models.NamespaceEmailVerification,
		WithClock(clock.Now), WithTracer(tr))
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, limiter.Consume(ctx, "rider@example.com"))
	}
	require.Error(t, limiter.Consume(ctx, "rider@example.com"))

	require.Len(t, tr.spans, 4)
	rejected := tr.spans[3]
	assert.True(t, rejected.ended)
	assert.Error(t, rejected.err, "the rejection must be recorded on the span")

	available, ok := attrValue(rejected.attrs, tracer.AttrAvailable)
	require.True(t, ok)
	assert.InDelta(t, 0.0, available.(float64), 1e-9)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, models.NamespaceEmailVerification)
	assert.Error(t, err)

	_, err = New(attempt.New(), "")
	assert.Error(t, err)
}

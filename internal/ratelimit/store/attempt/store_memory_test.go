package attempt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velofit/internal/ratelimit/models"
	"velofit/internal/sentinel"
)

func record(identifier string, attemptsLeft float64, at time.Time) *models.AttemptRecord {
	return &models.AttemptRecord{Identifier: identifier, AttemptsLeft: attemptsLeft, LastAttemptAt: at}
}

func TestInMemoryStore_FindMissing(t *testing.T) {
	store := New()
	_, err := store.Find(context.Background(), "email_verification:nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_InsertAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Insert(ctx, record("k", 2, now)))

	rec, err := store.Find(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.AttemptsLeft)
	assert.True(t, rec.LastAttemptAt.Equal(now))
}

func TestInMemoryStore_InsertDuplicateConflicts(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Insert(ctx, record("k", 2, now)))
	err := store.Insert(ctx, record("k", 2, now))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStore_FindReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Insert(ctx, record("k", 2, now)))

	rec, err := store.Find(ctx, "k")
	require.NoError(t, err)
	rec.AttemptsLeft = 99

	again, err := store.Find(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.AttemptsLeft, "mutating a returned record must not leak into the store")
}

func TestInMemoryStore_UpdateCAS(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Insert(ctx, record("k", 2, now)))

	t.Run("matching prior state succeeds", func(t *testing.T) {
		later := now.Add(time.Minute)
		require.NoError(t, store.Update(ctx, record("k", 1, later), 2, now))

		rec, err := store.Find(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 1.0, rec.AttemptsLeft)
	})

	t.Run("stale prior state conflicts", func(t *testing.T) {
		err := store.Update(ctx, record("k", 0, now), 2, now)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("missing record", func(t *testing.T) {
		err := store.Update(ctx, record("missing", 0, now), 2, now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

// TestInMemoryStore_ConcurrentCAS verifies that only one of many racing
// updates against the same prior state can win.
func TestInMemoryStore_ConcurrentCAS(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Insert(ctx, record("k", 1, now)))

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Update(ctx, record("k", 0, now.Add(time.Second)), 1, now); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "exactly one racer may debit the last attempt")
}

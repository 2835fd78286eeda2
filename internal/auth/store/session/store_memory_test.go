package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velofit/internal/auth/models"
	"velofit/internal/sentinel"
)

func testSession(t *testing.T, ttl time.Duration) *models.Session {
	t.Helper()
	session, err := models.NewSession("rider@example.com", "Chrome on Mac OS X", time.Now(), ttl)
	require.NoError(t, err)
	return session
}

func TestInMemorySessionStore_SaveAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	session := testSession(t, time.Hour)

	require.NoError(t, store.Save(ctx, session))

	found, err := store.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Email, found.Email)
	assert.Equal(t, session.DeviceDisplayName, found.DeviceDisplayName)
}

func TestInMemorySessionStore_FindMissing(t *testing.T) {
	store := New()
	_, err := store.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemorySessionStore_FindReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	session := testSession(t, time.Hour)
	require.NoError(t, store.Save(ctx, session))

	found, err := store.FindByID(ctx, session.ID)
	require.NoError(t, err)
	found.Email = "tampered@example.com"

	again, err := store.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "rider@example.com", again.Email)
}

func TestInMemorySessionStore_Delete(t *testing.T) {
	store := New()
	ctx := context.Background()
	session := testSession(t, time.Hour)
	require.NoError(t, store.Save(ctx, session))

	require.NoError(t, store.Delete(ctx, session.ID))

	_, err := store.FindByID(ctx, session.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = store.Delete(ctx, session.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemorySessionStore_DeleteExpired(t *testing.T) {
	store := New()
	ctx := context.Background()

	live := testSession(t, time.Hour)
	expired := testSession(t, time.Minute)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, expired))

	deleted, err := store.DeleteExpired(ctx, time.Now().Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.FindByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = store.FindByID(ctx, expired.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeUskov/rezumy09/internal/model"
)

func testStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(client, time.Hour), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	s := NewSession(uuid.New())
	s.SetResume(&model.ResumeData{PersonalInfo: model.PersonalInfo{FirstName: "Anna"}})
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Get(ctx, s.UserID)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, loaded.UserID)
	assert.Equal(t, StepUpload, loaded.Current)
	require.NotNil(t, loaded.Resume)
	assert.Equal(t, "Anna", loaded.Resume.PersonalInfo.FirstName)
	assert.True(t, loaded.Completed[StepUpload])
}

func TestSessionStore_MissingSession(t *testing.T) {
	store, _ := testStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	s := NewSession(uuid.New())
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, s.UserID))

	_, err := store.Get(ctx, s.UserID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is fine.
	assert.NoError(t, store.Delete(ctx, s.UserID))
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	s := NewSession(uuid.New())
	require.NoError(t, store.Save(ctx, s))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, s.UserID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_CorruptPayload(t *testing.T) {
	store, mr := testStore(t)
	userID := uuid.New()
	require.NoError(t, mr.Set(sessionKey(userID), "{broken"))

	_, err := store.Get(context.Background(), userID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

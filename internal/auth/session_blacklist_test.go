package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBlacklist(t *testing.T) {
	store := NewInMemoryBlacklistStore()

	blacklisted, err := store.IsBlacklisted("unknown-token")
	assert.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, store.AddToBlacklist("token-a", time.Now().Add(time.Hour)))

	blacklisted, err = store.IsBlacklisted("token-a")
	assert.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestInMemoryBlacklistCleanUp(t *testing.T) {
	store := NewInMemoryBlacklistStore()

	require.NoError(t, store.AddToBlacklist("expired-token", time.Now().Add(-time.Minute)))
	require.NoError(t, store.AddToBlacklist("live-token", time.Now().Add(time.Hour)))

	store.CleanUpExpired()

	expired, _ := store.IsBlacklisted("expired-token")
	assert.False(t, expired)
	live, _ := store.IsBlacklisted("live-token")
	assert.True(t, live)
}

func TestRedisBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisBlacklistStore(client)

	blacklisted, err := store.IsBlacklisted("unknown-token")
	assert.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, store.AddToBlacklist("token-b", time.Now().Add(time.Hour)))

	blacklisted, err = store.IsBlacklisted("token-b")
	assert.NoError(t, err)
	assert.True(t, blacklisted)

	// Entry disappears with the token's own lifetime.
	mr.FastForward(2 * time.Hour)
	blacklisted, err = store.IsBlacklisted("token-b")
	assert.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestRedisBlacklistIgnoresExpiredTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisBlacklistStore(client)

	require.NoError(t, store.AddToBlacklist("already-expired", time.Now().Add(-time.Minute)))

	blacklisted, err := store.IsBlacklisted("already-expired")
	assert.NoError(t, err)
	assert.False(t, blacklisted)
}

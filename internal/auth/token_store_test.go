package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	mem := newMemoryCache()
	store := NewTokenStore(mem)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, mem.ttls[revokedTokenKeyPrefix+"jti-1"])
}

func TestTokenStore_IgnoresExpiredOrAnonymousTokens(t *testing.T) {
	mem := newMemoryCache()
	store := NewTokenStore(mem)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "", time.Hour))
	require.NoError(t, store.Revoke(ctx, "jti-2", 0))

	assert.Empty(t, mem.data)
}

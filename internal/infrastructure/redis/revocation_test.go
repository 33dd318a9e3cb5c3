package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/docvault/internal/application/auth"
)

var _ auth.RevocationRegistry = (*RevocationRegistry)(nil)

func TestRevocationRegistry_RevokeSetsTTL(t *testing.T) {
	c, mr := newTestClient(t)
	r := NewRevocationRegistry(c)
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "tok-1", time.Now().Add(time.Hour)))

	revoked, err := r.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	key := revocationKey("tok-1")
	assert.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl=%v", ttl)
}

func TestRevocationRegistry_KeyIsDigest(t *testing.T) {
	key := revocationKey("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	assert.True(t, strings.HasPrefix(key, "revoked:"))
	assert.NotContains(t, key, "payload")
	assert.Len(t, key, len("revoked:")+64)
}

func TestRevocationRegistry_ExpiresWithToken(t *testing.T) {
	c, mr := newTestClient(t)
	r := NewRevocationRegistry(c)
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "tok-1", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := r.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRegistry_ExpiredTokenNotStored(t *testing.T) {
	c, mr := newTestClient(t)
	r := NewRevocationRegistry(c)

	require.NoError(t, r.Revoke(context.Background(), "old", time.Now().Add(-time.Second)))
	assert.Empty(t, mr.Keys())
}

func TestRevocationRegistry_Idempotent(t *testing.T) {
	c, _ := newTestClient(t)
	r := NewRevocationRegistry(c)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Revoke(ctx, "tok", exp))
	require.NoError(t, r.Revoke(ctx, "tok", exp))

	revoked, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationRegistry_NotConfigured(t *testing.T) {
	r := NewRevocationRegistry(nil)

	assert.Error(t, r.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))
	_, err := r.IsRevoked(context.Background(), "tok")
	assert.Error(t, err)
}

func TestRevocationRegistry_RedisDown(t *testing.T) {
	c, mr := newTestClient(t)
	r := NewRevocationRegistry(c)
	mr.Close()

	_, err := r.IsRevoked(context.Background(), "tok")
	assert.Error(t, err)
}

func TestRevocationRegistry_Entries(t *testing.T) {
	c, mr := newTestClient(t)
	r := NewRevocationRegistry(c)
	ctx := context.Background()

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, r.Revoke(ctx, tok, time.Now().Add(time.Hour)))
	}
	// unrelated keys are not reported
	require.NoError(t, mr.Set("rl:auth:1.2.3.4", "3"))

	entries, err := r.Entries(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Len(t, e.Digest, 64)
		assert.True(t, e.TTL > 59*time.Minute, "ttl=%v", e.TTL)
	}

	limited, err := r.Entries(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = NewRevocationRegistry(nil).Entries(ctx, 0, 0)
	assert.Error(t, err)
}

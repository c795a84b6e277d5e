package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

func newTestCache(t *testing.T, compression bool) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisCache(client, compression), mr
}

func testCachedEnvelope(keyID string, version uint) *authorityDomain.DataKeyEnvelope {
	// Second precision keeps equality assertions stable across the JSON
	// roundtrip.
	now := time.Now().UTC().Truncate(time.Second)
	return &authorityDomain.DataKeyEnvelope{
		KeyID:                keyID,
		KeyVersion:           version,
		WrappedKeyMaterial:   []byte("wrapped-key-material"),
		PlaintextKeyMaterial: []byte("plaintext-key-material-32-bytes!"),
		CreatedAt:            now,
		ExpiresAt:            now.Add(time.Hour),
	}
}

func TestRedisCache_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		envelope := testCachedEnvelope("key-1", 1)

		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))

		assert.True(t, mr.Exists("envelope:wrapped:key-1:1"))
		assert.True(t, mr.Exists("envelope:plaintext:key-1:1"))
		assert.Equal(t, 10*time.Minute, mr.TTL("envelope:wrapped:key-1:1"))
		assert.Equal(t, 10*time.Minute, mr.TTL("envelope:plaintext:key-1:1"))

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, envelope, cached)
	})

	t.Run("Success_WithoutPlaintext", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		envelope := testCachedEnvelope("key-1", 1)
		envelope.PlaintextKeyMaterial = nil

		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))

		assert.True(t, mr.Exists("envelope:wrapped:key-1:1"))
		assert.False(t, mr.Exists("envelope:plaintext:key-1:1"))
	})

	t.Run("Success_CompressedPayload", func(t *testing.T) {
		cache, mr := newTestCache(t, true)
		envelope := testCachedEnvelope("key-1", 1)

		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))

		raw, err := mr.Get("envelope:wrapped:key-1:1")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix([]byte(raw), gzipMagic))

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, envelope, cached)
	})

	t.Run("Error_BackendDown", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		mr.SetError("connection refused")

		err := cache.Put(ctx, testCachedEnvelope("key-1", 1), 10*time.Minute)
		assert.True(t, apperrors.Is(err, ErrCacheUnavailable))
	})
}

func TestRedisCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SelectsRequestedVersion", func(t *testing.T) {
		cache, _ := newTestCache(t, false)
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-1", 1), 10*time.Minute))
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-1", 2), 10*time.Minute))

		cached, found, err := cache.Get(ctx, "key-1", 2)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, uint(2), cached.KeyVersion)
	})

	t.Run("Success_WrappedOnlyAfterPlaintextEviction", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		envelope := testCachedEnvelope("key-1", 1)
		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))
		mr.Del("envelope:plaintext:key-1:1")

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, envelope.WrappedKeyMaterial, cached.WrappedKeyMaterial)
		assert.Nil(t, cached.PlaintextKeyMaterial)
	})

	t.Run("Success_PlaintextOnly", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		envelope := testCachedEnvelope("key-1", 1)
		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))
		mr.Del("envelope:wrapped:key-1:1")

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "key-1", cached.KeyID)
		assert.Equal(t, uint(1), cached.KeyVersion)
		assert.Equal(t, envelope.PlaintextKeyMaterial, cached.PlaintextKeyMaterial)
		assert.Nil(t, cached.WrappedKeyMaterial)
	})

	t.Run("Success_MissWhenEmpty", func(t *testing.T) {
		cache, _ := newTestCache(t, false)

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, cached)
	})

	t.Run("Success_MissAfterTTLExpiry", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-1", 1), 10*time.Minute))

		mr.FastForward(11 * time.Minute)

		_, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Success_ReadsCompressedEntryAfterFlagDisabled", func(t *testing.T) {
		compressed, mr := newTestCache(t, true)
		envelope := testCachedEnvelope("key-1", 1)
		require.NoError(t, compressed.Put(ctx, envelope, 10*time.Minute))

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() {
			_ = client.Close()
		})
		plain := NewRedisCache(client, false)

		cached, found, err := plain.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, envelope, cached)
	})

	t.Run("Error_BackendDown", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		mr.SetError("connection refused")

		_, _, err := cache.Get(ctx, "key-1", 1)
		assert.True(t, apperrors.Is(err, ErrCacheUnavailable))
	})
}

func TestRedisCache_InvalidateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RemovesAllVersions", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-1", 1), 10*time.Minute))
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-1", 2), 10*time.Minute))
		require.NoError(t, cache.Put(ctx, testCachedEnvelope("key-2", 1), 10*time.Minute))

		require.NoError(t, cache.InvalidateKey(ctx, "key-1"))

		assert.False(t, mr.Exists("envelope:wrapped:key-1:1"))
		assert.False(t, mr.Exists("envelope:plaintext:key-1:1"))
		assert.False(t, mr.Exists("envelope:wrapped:key-1:2"))
		assert.False(t, mr.Exists("envelope:plaintext:key-1:2"))

		// Other keys are untouched.
		assert.True(t, mr.Exists("envelope:wrapped:key-2:1"))
		assert.True(t, mr.Exists("envelope:plaintext:key-2:1"))
	})

	t.Run("Success_NoEntries", func(t *testing.T) {
		cache, _ := newTestCache(t, false)

		require.NoError(t, cache.InvalidateKey(ctx, "key-1"))
	})

	t.Run("Error_BackendDown", func(t *testing.T) {
		cache, mr := newTestCache(t, false)
		mr.SetError("connection refused")

		err := cache.InvalidateKey(ctx, "key-1")
		assert.True(t, apperrors.Is(err, ErrCacheUnavailable))
	})
}

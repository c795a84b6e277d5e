// Package service implements the envelope cache: a Redis-backed store for
// wrapped data key envelopes and their plaintext key material.
//
// Each (keyID, version) pair owns two entries:
//
//   - envelope:wrapped:<keyID>:<version>    JSON envelope without plaintext
//   - envelope:plaintext:<keyID>:<version>  raw data key bytes
//
// Both entries expire after the configured TTL so plaintext key material
// never lives in Redis indefinitely. Invalidation removes every version of a
// key at once, which is how rotation evicts retired plaintext entries.
package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// ErrCacheUnavailable classifies Redis failures behind the envelope cache.
// The fail-open decorator swallows it on reads and writes; InvalidateKey
// surfaces it because rotation completion depends on the eviction.
var ErrCacheUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "envelope cache unavailable")

// scanCount is the per-iteration hint passed to SCAN during invalidation.
const scanCount = 100

var gzipMagic = []byte{0x1f, 0x8b}

// cachedEnvelope is the JSON form of a wrapped envelope. Plaintext key
// material is never part of this payload; it lives under its own entry as
// raw bytes so it is never serialized through an encoder.
type cachedEnvelope struct {
	KeyID              string    `json:"key_id"`
	KeyVersion         uint      `json:"key_version"`
	WrappedKeyMaterial []byte    `json:"wrapped_key_material"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// RedisCache implements Cache on top of go-redis. When compression is
// enabled, wrapped envelope payloads are gzip-compressed before the write;
// reads sniff the gzip magic header, so entries written under either setting
// stay readable after the flag changes.
type RedisCache struct {
	client      *redis.Client
	compression bool
}

// Get loads the wrapped and plaintext entries for a key version. Either
// entry may be absent: a wrapped-only result lets the caller unwrap without
// a database read, a plaintext hit skips the authority entirely. Only when
// both entries are gone does Get report a miss.
func (c *RedisCache) Get(ctx context.Context, keyID string, version uint) (*authorityDomain.DataKeyEnvelope, bool, error) {
	wrapped, err := c.client.Get(ctx, wrappedEntryKey(keyID, version)).Bytes()
	if err != nil && err != redis.Nil {
		return nil, false, apperrors.Wrapf(ErrCacheUnavailable, "read wrapped envelope: %s", err)
	}
	wrappedFound := err == nil

	plaintext, err := c.client.Get(ctx, plaintextEntryKey(keyID, version)).Bytes()
	if err != nil && err != redis.Nil {
		return nil, false, apperrors.Wrapf(ErrCacheUnavailable, "read plaintext data key: %s", err)
	}
	plaintextFound := err == nil

	if !wrappedFound && !plaintextFound {
		return nil, false, nil
	}

	envelope := &authorityDomain.DataKeyEnvelope{
		KeyID:      keyID,
		KeyVersion: version,
	}

	if wrappedFound {
		payload, err := decompressPayload(wrapped)
		if err != nil {
			return nil, false, apperrors.Wrapf(ErrCacheUnavailable, "decompress wrapped envelope: %s", err)
		}
		var cached cachedEnvelope
		if err := json.Unmarshal(payload, &cached); err != nil {
			return nil, false, apperrors.Wrapf(ErrCacheUnavailable, "decode wrapped envelope: %s", err)
		}
		envelope.WrappedKeyMaterial = cached.WrappedKeyMaterial
		envelope.CreatedAt = cached.CreatedAt
		envelope.ExpiresAt = cached.ExpiresAt
	}

	if plaintextFound {
		envelope.PlaintextKeyMaterial = plaintext
	}

	return envelope, true, nil
}

// Put writes the envelope's entries with the given TTL. Both writes run in a
// single MULTI/EXEC so a pair is never half-written. Envelopes without
// plaintext material only produce the wrapped entry.
func (c *RedisCache) Put(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope, ttl time.Duration) error {
	payload, err := json.Marshal(cachedEnvelope{
		KeyID:              envelope.KeyID,
		KeyVersion:         envelope.KeyVersion,
		WrappedKeyMaterial: envelope.WrappedKeyMaterial,
		CreatedAt:          envelope.CreatedAt,
		ExpiresAt:          envelope.ExpiresAt,
	})
	if err != nil {
		return apperrors.Wrapf(ErrCacheUnavailable, "encode wrapped envelope: %s", err)
	}

	if c.compression {
		payload, err = compressPayload(payload)
		if err != nil {
			return apperrors.Wrapf(ErrCacheUnavailable, "compress wrapped envelope: %s", err)
		}
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, wrappedEntryKey(envelope.KeyID, envelope.KeyVersion), payload, ttl)
		if envelope.PlaintextKeyMaterial != nil {
			pipe.Set(ctx, plaintextEntryKey(envelope.KeyID, envelope.KeyVersion), envelope.PlaintextKeyMaterial, ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrapf(ErrCacheUnavailable, "write envelope entries: %s", err)
	}
	return nil
}

// InvalidateKey deletes every cached version of a key across both entry
// prefixes. Rotation calls this after committing a new version so plaintext
// material of the retired version cannot be served again.
func (c *RedisCache) InvalidateKey(ctx context.Context, keyID string) error {
	patterns := []string{
		fmt.Sprintf("envelope:wrapped:%s:*", keyID),
		fmt.Sprintf("envelope:plaintext:%s:*", keyID),
	}

	var keys []string
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, scanCount).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return apperrors.Wrapf(ErrCacheUnavailable, "scan envelope entries: %s", err)
		}
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrapf(ErrCacheUnavailable, "delete envelope entries: %s", err)
	}
	return nil
}

func wrappedEntryKey(keyID string, version uint) string {
	return fmt.Sprintf("envelope:wrapped:%s:%d", keyID, version)
}

func plaintextEntryKey(keyID string, version uint) string {
	return fmt.Sprintf("envelope:plaintext:%s:%d", keyID, version)
}

func compressPayload(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressPayload inflates gzip payloads and passes everything else
// through untouched, keyed off the gzip magic header.
func decompressPayload(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// NewRedisCache returns a RedisCache using the given client. Compression
// applies to wrapped envelope payloads only; plaintext entries are always
// stored as raw bytes.
func NewRedisCache(client *redis.Client, compression bool) *RedisCache {
	return &RedisCache{client: client, compression: compression}
}

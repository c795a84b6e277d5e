package service

import (
	"context"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
)

// Cache stores data key envelopes between encryption operations so that hot
// keys do not require a database read and an authority unwrap on every call.
//
// Entries are keyed by (keyID, version). The wrapped envelope and the
// plaintext key material are stored separately; a Get may return an envelope
// that carries only the wrapped material when the plaintext entry has been
// evicted.
type Cache interface {
	// Get returns the cached envelope for a key version. The second return
	// value reports whether any entry was found; a miss is not an error.
	Get(ctx context.Context, keyID string, version uint) (*authorityDomain.DataKeyEnvelope, bool, error)

	// Put stores the envelope's wrapped material and, when present, its
	// plaintext key material. Both entries expire after ttl.
	Put(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope, ttl time.Duration) error

	// InvalidateKey removes every cached version of a key. After it returns,
	// no Get observes a pre-invalidation entry for that key.
	InvalidateKey(ctx context.Context, keyID string) error
}

// Package service implements the resilient root-key authority client: a
// keeper-backed client per region wrapped in explicit retry, circuit-breaker,
// and regional-failover decorators.
package service

import (
	"context"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
)

// Client performs root-key operations against a single region's authority.
// Implementations are safe for concurrent use.
type Client interface {
	// WrapKey generates a fresh data key and wraps it under the root key,
	// returning an envelope stamped with the authority's current key version.
	WrapKey(ctx context.Context, keyID string) (authorityDomain.DataKeyEnvelope, error)

	// UnwrapKey decrypts the wrapped key material in the envelope.
	UnwrapKey(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope) ([]byte, error)

	// RotateKey advances the authority's key version and returns the new version.
	RotateKey(ctx context.Context, keyID string) (uint, error)

	// DescribeKey returns the authority's metadata for the key.
	DescribeKey(ctx context.Context, keyID string) (authorityDomain.KeyMetadata, error)

	// EnableRotation marks the key as rotatable at the authority.
	EnableRotation(ctx context.Context, keyID string) error

	// Region identifies the region this client talks to.
	Region() string
}

// Adapter is the multi-region authority surface consumed by the rotation
// scheduler and the encryption service. Every method reports a CallInfo so
// callers can record which region served the call and whether it was degraded.
type Adapter interface {
	WrapKey(
		ctx context.Context,
		keyID string,
	) (authorityDomain.DataKeyEnvelope, authorityDomain.CallInfo, error)
	UnwrapKey(
		ctx context.Context,
		envelope *authorityDomain.DataKeyEnvelope,
	) ([]byte, authorityDomain.CallInfo, error)
	RotateKey(ctx context.Context, keyID string) (uint, authorityDomain.CallInfo, error)
	DescribeKey(
		ctx context.Context,
		keyID string,
	) (authorityDomain.KeyMetadata, authorityDomain.CallInfo, error)
	EnableRotation(ctx context.Context, keyID string) (authorityDomain.CallInfo, error)
}

// KeeperOpener opens KMS keepers by URI.
type KeeperOpener interface {
	// OpenKeeper opens a keeper for the given key URI.
	OpenKeeper(ctx context.Context, keyURI string) (authorityDomain.Keeper, error)
}

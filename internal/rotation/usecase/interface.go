package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// KeyDescriptorRepository defines the interface for key descriptor persistence.
type KeyDescriptorRepository interface {
	Create(ctx context.Context, descriptor *rotationDomain.KeyDescriptor) error
	Update(ctx context.Context, descriptor *rotationDomain.KeyDescriptor) error
	GetEncryptable(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
	GetByAliasAndVersion(ctx context.Context, aliasName string, version uint) (*rotationDomain.KeyDescriptor, error)
	GetLatest(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
	ListByAlias(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error)
	List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*rotationDomain.KeyDescriptor, error)
}

// EnvelopeRepository defines the interface for wrapped data key persistence.
// Envelopes are append-only: one row per key version, never updated or deleted,
// so every retired version stays decryptable.
type EnvelopeRepository interface {
	Create(ctx context.Context, envelope *rotationDomain.KeyEnvelope) error
	Get(ctx context.Context, keyID string, version uint) (*rotationDomain.KeyEnvelope, error)
}

// LockService defines the distributed rotation lock. Acquire never blocks:
// contention returns ErrLockContention immediately.
type LockService interface {
	Acquire(ctx context.Context, keyID, holderID string, lease time.Duration) (*rotationDomain.RotationLock, error)
	Release(ctx context.Context, keyID, holderID string) error
}

// KeyAuthority defines the root-key authority operations used during key
// lifecycle management. Every call reports a CallInfo identifying the region
// that served it and whether failover degraded the call.
type KeyAuthority interface {
	WrapKey(ctx context.Context, keyID string) (authorityDomain.DataKeyEnvelope, authorityDomain.CallInfo, error)
	RotateKey(ctx context.Context, keyID string) (uint, authorityDomain.CallInfo, error)
	DescribeKey(ctx context.Context, keyID string) (authorityDomain.KeyMetadata, authorityDomain.CallInfo, error)
	EnableRotation(ctx context.Context, keyID string) (authorityDomain.CallInfo, error)
}

// EnvelopeCache drops cached data keys for a key so plaintext key material
// of retired versions does not linger after rotation.
type EnvelopeCache interface {
	InvalidateKey(ctx context.Context, keyID string) error
}

// AuditRecorder records one audit record per key lifecycle operation.
type AuditRecorder interface {
	Record(
		ctx context.Context,
		operation string,
		keyID string,
		keyVersion uint,
		outcome auditDomain.Outcome,
		actor auditDomain.ActorContext,
	) error
}

// KeyUseCase defines the interface for key lifecycle operations.
type KeyUseCase interface {
	Create(ctx context.Context, aliasName, regionPrimary, regionDR string) (*rotationDomain.KeyDescriptor, error)
	Rotate(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
	Describe(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error)
	List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error)
	Reset(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
}

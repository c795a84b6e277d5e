package usecase

import (
	"context"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// KeyDescriptorRepository defines the descriptor reads payload encryption
// depends on. Encryption resolves the alias's encryptable version; decryption
// resolves the exact version embedded in the blob.
type KeyDescriptorRepository interface {
	GetEncryptable(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
	GetByAliasAndVersion(ctx context.Context, aliasName string, version uint) (*rotationDomain.KeyDescriptor, error)
	GetLatest(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error)
}

// EnvelopeRepository reads the persisted wrapped data key for a key version.
type EnvelopeRepository interface {
	Get(ctx context.Context, keyID string, version uint) (*rotationDomain.KeyEnvelope, error)
}

// EnvelopeCache is the data key cache in front of the database and the
// authority. A miss is never an error.
type EnvelopeCache interface {
	Get(ctx context.Context, keyID string, version uint) (*authorityDomain.DataKeyEnvelope, bool, error)
	Put(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope, ttl time.Duration) error
}

// KeyAuthority unwraps persisted data keys through the root-key authority.
type KeyAuthority interface {
	UnwrapKey(
		ctx context.Context,
		envelope *authorityDomain.DataKeyEnvelope,
	) ([]byte, authorityDomain.CallInfo, error)
}

// AuditRecorder records one audit record per payload operation.
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

// EncryptionUseCase defines the payload encryption operations.
type EncryptionUseCase interface {
	// Encrypt seals plaintext under the alias's current encryptable version
	// and returns a self-describing blob.
	Encrypt(ctx context.Context, aliasName string, plaintext []byte) (*encryptionDomain.EncryptedBlob, error)

	// Decrypt opens a blob under the exact version embedded in it, whatever
	// that version's lifecycle state is today.
	Decrypt(ctx context.Context, content string) ([]byte, error)

	// Reencrypt re-seals a blob's payload under the alias's current
	// encryptable version. Callers drive data migration after rotation;
	// nothing re-encrypts automatically.
	Reencrypt(ctx context.Context, content string) (*encryptionDomain.EncryptedBlob, error)
}

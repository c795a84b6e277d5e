// Package usecase implements the payload encryption operations: encrypt,
// decrypt, and re-encrypt against versioned managed keys.
//
// # Data Key Resolution
//
// Every operation needs the plaintext data key for one (keyID, version)
// pair. Resolution walks a fixed path:
//
//	envelope cache (plaintext entry)
//	  → envelope cache (wrapped entry) + authority unwrap
//	  → database envelope + authority unwrap
//
// Whatever the source, an unwrapped key is written back to the cache with
// the configured TTL and zeroed from memory as soon as the AEAD call is
// done.
//
// # Version Pinning
//
// Encrypt resolves the alias's current encryptable version and stamps it
// into the returned blob. Decrypt trusts only the version embedded in the
// blob, never the alias's current state, so data encrypted before a rotation
// stays readable from Retired and even RotationFailed versions. Re-encrypt
// is the caller-driven migration between the two: open under the embedded
// version, seal under the current one.
//
// # Auditing
//
// Each operation emits exactly one audit record once a key descriptor has
// been resolved, on success and on failure alike. The actor context carries
// where the data key came from and, when the authority served the call,
// which region answered and whether the call was degraded. Failures before
// a descriptor exists (malformed blob, unknown alias) emit nothing: there
// is no key to attach the record to.
package usecase

import (
	"context"
	"log/slog"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
	encryptionService "github.com/allisson/keyvault/internal/encryption/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// Config carries the payload encryption settings.
type Config struct {
	// Algorithm selects the AEAD for new encryptions. Decryption does not
	// depend on it: both supported AEADs share the nonce layout.
	Algorithm encryptionDomain.Algorithm

	// CacheTTL bounds how long cached data keys live in the envelope cache.
	CacheTTL time.Duration
}

// encryptionUseCase implements the EncryptionUseCase interface.
type encryptionUseCase struct {
	config         Config
	descriptorRepo KeyDescriptorRepository
	envelopeRepo   EnvelopeRepository
	envelopeCache  EnvelopeCache
	authority      KeyAuthority
	aeadManager    encryptionService.AEADManager
	auditRecorder  AuditRecorder
}

// actorContext builds the audit actor context for a payload operation.
// source names where the data key came from; info is present only when the
// authority served part of the call.
func actorContext(source string, info *authorityDomain.CallInfo) auditDomain.ActorContext {
	actor := auditDomain.ActorContext{"data_key_source": source}
	if info != nil {
		actor["authority_region"] = info.Region
		actor["degraded"] = info.Degraded
		actor["authority_attempts"] = info.Attempts
	}
	return actor
}

// Encrypt seals plaintext under the alias's current encryptable version.
//
// The encryption process:
//  1. Resolves the alias's encryptable descriptor (Active, or a version
//     with a rotation in flight; in-flight rotations do not block)
//  2. Loads the plaintext data key for that version
//  3. Seals the plaintext and prepends the nonce to the ciphertext
//  4. Records the audit record for the operation
//
// Returns ErrKeyState when the alias exists but every version is retired or
// parked in rotation_failed, and ErrKeyNotFound for an unknown alias.
func (e *encryptionUseCase) Encrypt(
	ctx context.Context,
	aliasName string,
	plaintext []byte,
) (*encryptionDomain.EncryptedBlob, error) {
	descriptor, err := e.resolveEncryptable(ctx, aliasName)
	if err != nil {
		return nil, err
	}

	blob, actor, err := e.seal(ctx, descriptor, plaintext)
	if err != nil {
		return nil, e.recordFailure(ctx, auditDomain.OperationEncrypt, descriptor, actor, err)
	}

	err = e.auditRecorder.Record(
		ctx,
		auditDomain.OperationEncrypt,
		descriptor.KeyID,
		descriptor.Version,
		auditDomain.OutcomeSuccess,
		actor,
	)
	if err != nil {
		return nil, err
	}

	return blob, nil
}

// Decrypt opens an encrypted blob using the version embedded in it.
//
// The decryption process:
//  1. Parses the blob string into alias, version, and ciphertext
//  2. Resolves the descriptor for exactly that alias and version
//  3. Loads the plaintext data key and opens the ciphertext
//  4. Records the audit record for the operation
//
// Any existing version decrypts regardless of its lifecycle state; only a
// destroyed version fails, as ErrKeyNotFound.
func (e *encryptionUseCase) Decrypt(ctx context.Context, content string) ([]byte, error) {
	blob, err := encryptionDomain.NewEncryptedBlob(content)
	if err != nil {
		return nil, err
	}

	descriptor, err := e.descriptorRepo.GetByAliasAndVersion(ctx, blob.AliasName, blob.Version)
	if err != nil {
		return nil, err
	}

	plaintext, actor, err := e.open(ctx, descriptor, blob)
	if err != nil {
		return nil, e.recordFailure(ctx, auditDomain.OperationDecrypt, descriptor, actor, err)
	}

	err = e.auditRecorder.Record(
		ctx,
		auditDomain.OperationDecrypt,
		descriptor.KeyID,
		descriptor.Version,
		auditDomain.OutcomeSuccess,
		actor,
	)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// Reencrypt re-seals a blob's payload under the alias's current encryptable
// version. One audit record covers the whole operation; its actor context
// names the source version the payload migrated from.
func (e *encryptionUseCase) Reencrypt(
	ctx context.Context,
	content string,
) (*encryptionDomain.EncryptedBlob, error) {
	blob, err := encryptionDomain.NewEncryptedBlob(content)
	if err != nil {
		return nil, err
	}

	source, err := e.descriptorRepo.GetByAliasAndVersion(ctx, blob.AliasName, blob.Version)
	if err != nil {
		return nil, err
	}

	plaintext, openActor, err := e.open(ctx, source, blob)
	if err != nil {
		return nil, e.recordFailure(ctx, auditDomain.OperationReencrypt, source, openActor, err)
	}
	defer authorityDomain.ZeroBytes(plaintext)

	target, err := e.resolveEncryptable(ctx, blob.AliasName)
	if err != nil {
		return nil, e.recordFailure(ctx, auditDomain.OperationReencrypt, source, openActor, err)
	}

	newBlob, sealActor, err := e.seal(ctx, target, plaintext)
	if err != nil {
		return nil, e.recordFailure(ctx, auditDomain.OperationReencrypt, target, sealActor, err)
	}

	sealActor["source_version"] = source.Version
	err = e.auditRecorder.Record(
		ctx,
		auditDomain.OperationReencrypt,
		target.KeyID,
		target.Version,
		auditDomain.OutcomeSuccess,
		sealActor,
	)
	if err != nil {
		return nil, err
	}

	return newBlob, nil
}

// resolveEncryptable returns the alias's encryptable descriptor, translating
// "every version retired or failed" into ErrKeyState so callers can tell it
// apart from an alias that never existed.
func (e *encryptionUseCase) resolveEncryptable(
	ctx context.Context,
	aliasName string,
) (*rotationDomain.KeyDescriptor, error) {
	descriptor, err := e.descriptorRepo.GetEncryptable(ctx, aliasName)
	if err == nil {
		return descriptor, nil
	}
	if !apperrors.Is(err, rotationDomain.ErrKeyNotFound) {
		return nil, err
	}

	if _, latestErr := e.descriptorRepo.GetLatest(ctx, aliasName); latestErr == nil {
		return nil, apperrors.Wrapf(
			rotationDomain.ErrKeyState,
			"alias %q has no encryptable version",
			aliasName,
		)
	}
	return nil, err
}

// seal encrypts plaintext with the descriptor's data key and packs the
// result as nonce followed by ciphertext.
func (e *encryptionUseCase) seal(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
	plaintext []byte,
) (*encryptionDomain.EncryptedBlob, auditDomain.ActorContext, error) {
	dataKey, actor, err := e.dataKey(ctx, descriptor.KeyID, descriptor.Version)
	if err != nil {
		return nil, actor, err
	}
	defer authorityDomain.ZeroBytes(dataKey)

	cipher, err := e.aeadManager.CreateCipher(dataKey, e.config.Algorithm)
	if err != nil {
		return nil, actor, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
	if err != nil {
		return nil, actor, apperrors.Wrap(err, "failed to encrypt plaintext")
	}

	combined := make([]byte, 0, len(nonce)+len(ciphertext))
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)

	return &encryptionDomain.EncryptedBlob{
		AliasName:  descriptor.AliasName,
		Version:    descriptor.Version,
		Ciphertext: combined,
	}, actor, nil
}

// open decrypts a blob's ciphertext with the descriptor's data key.
func (e *encryptionUseCase) open(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
	blob encryptionDomain.EncryptedBlob,
) ([]byte, auditDomain.ActorContext, error) {
	dataKey, actor, err := e.dataKey(ctx, descriptor.KeyID, descriptor.Version)
	if err != nil {
		return nil, actor, err
	}
	defer authorityDomain.ZeroBytes(dataKey)

	if len(blob.Ciphertext) < encryptionDomain.NonceSize {
		return nil, actor, encryptionDomain.ErrCiphertextTooShort
	}

	cipher, err := e.aeadManager.CreateCipher(dataKey, e.config.Algorithm)
	if err != nil {
		return nil, actor, err
	}

	nonce := blob.Ciphertext[:encryptionDomain.NonceSize]
	sealed := blob.Ciphertext[encryptionDomain.NonceSize:]

	plaintext, err := cipher.Decrypt(sealed, nonce, nil)
	if err != nil {
		return nil, actor, apperrors.Wrap(err, "failed to decrypt ciphertext")
	}
	return plaintext, actor, nil
}

// dataKey loads the plaintext data key for a key version: plaintext cache
// entry first, then a cached wrapped envelope, then the persisted envelope,
// unwrapping through the authority when only wrapped material is available.
// Unwrapped keys are written back to the cache before returning.
func (e *encryptionUseCase) dataKey(
	ctx context.Context,
	keyID string,
	version uint,
) ([]byte, auditDomain.ActorContext, error) {
	cached, found, err := e.envelopeCache.Get(ctx, keyID, version)
	if err != nil {
		return nil, actorContext("cache", nil), err
	}
	if found && cached.PlaintextKeyMaterial != nil {
		return cached.PlaintextKeyMaterial, actorContext("cache", nil), nil
	}

	// A wrapped-only hit happens when the plaintext entry was evicted but
	// the wrapped envelope survived; the database read can be skipped.
	if found && cached.WrappedKeyMaterial != nil {
		return e.unwrapAndCache(ctx, cached, "cache_wrapped")
	}

	envelope, err := e.envelopeRepo.Get(ctx, keyID, version)
	if err != nil {
		return nil, actorContext("database", nil), err
	}

	return e.unwrapAndCache(ctx, &authorityDomain.DataKeyEnvelope{
		KeyID:              envelope.KeyID,
		KeyVersion:         envelope.KeyVersion,
		WrappedKeyMaterial: envelope.WrappedKeyMaterial,
		CreatedAt:          envelope.CreatedAt,
	}, "database")
}

// unwrapAndCache asks the authority for the plaintext key material and
// writes the completed envelope back to the cache.
func (e *encryptionUseCase) unwrapAndCache(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
	source string,
) ([]byte, auditDomain.ActorContext, error) {
	plaintextKey, info, err := e.authority.UnwrapKey(ctx, envelope)
	actor := actorContext(source, &info)
	if err != nil {
		return nil, actor, err
	}

	envelope.PlaintextKeyMaterial = plaintextKey
	if err := e.envelopeCache.Put(ctx, envelope, e.config.CacheTTL); err != nil {
		return nil, actor, err
	}
	return plaintextKey, actor, nil
}

// recordFailure writes the failure audit record for an operation that
// already has a resolved descriptor, then hands the original error back.
// Audit write failures are logged, not layered on top of the failure the
// caller is about to see.
func (e *encryptionUseCase) recordFailure(
	ctx context.Context,
	operation string,
	descriptor *rotationDomain.KeyDescriptor,
	actor auditDomain.ActorContext,
	cause error,
) error {
	actor["error"] = cause.Error()
	err := e.auditRecorder.Record(
		ctx,
		operation,
		descriptor.KeyID,
		descriptor.Version,
		auditDomain.OutcomeFailure,
		actor,
	)
	if err != nil {
		slog.Error("failed to record audit for failed operation",
			slog.String("operation", operation),
			slog.String("key_id", descriptor.KeyID),
			slog.Any("error", err),
		)
	}
	return cause
}

// NewEncryptionUseCase creates a new payload encryption use case instance
// with the provided dependencies.
func NewEncryptionUseCase(
	config Config,
	descriptorRepo KeyDescriptorRepository,
	envelopeRepo EnvelopeRepository,
	envelopeCache EnvelopeCache,
	authority KeyAuthority,
	aeadManager encryptionService.AEADManager,
	auditRecorder AuditRecorder,
) EncryptionUseCase {
	return &encryptionUseCase{
		config:         config,
		descriptorRepo: descriptorRepo,
		envelopeRepo:   envelopeRepo,
		envelopeCache:  envelopeCache,
		authority:      authority,
		aeadManager:    aeadManager,
		auditRecorder:  auditRecorder,
	}
}

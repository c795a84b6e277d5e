// Package usecase implements business logic orchestration for key lifecycle
// management: creation, scheduled and manual rotation, and operator recovery.
//
// This package provides the use case layer for managed keys following Clean
// Architecture principles. Use cases coordinate between the root-key authority
// (remote wrap/unwrap operations), repositories (descriptor and envelope
// persistence), the distributed rotation lock, the envelope cache, and the
// audit trail.
//
// # Key Lifecycle
//
// Each alias owns a sequence of key versions. Exactly one version per alias is
// encryptable at any time; retired versions remain decrypt-only forever:
//
//	Active → PendingRotation → Rotating → Retired
//	                              ↓
//	                       Active (new version)
//
// A failed rotation returns the version to Active and increments its retry
// counter. Once the counter exceeds the configured budget the key parks in
// RotationFailed until an operator resets it.
//
// # Rotation Safety
//
// Rotation coordinates three systems that cannot share a transaction: the
// remote authority, the local database, and the envelope cache. Safety comes
// from ordering and convergence rather than distributed transactions:
//
//   - A lease-based lock ensures one rotation per key at a time. A crashed
//     holder's lease expires and the next scheduler pass retries.
//   - The authority version is advanced before the local commit. If the
//     process dies between the two, the next attempt observes the authority
//     ahead of the descriptor and adopts the remote version instead of
//     advancing it again.
//   - The local commit is a single transaction: retire the old version,
//     create the new descriptor, persist the new wrapped envelope.
//   - After commit the envelope cache entries for the key are dropped so
//     plaintext data keys of retired versions do not outlive rotation.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// Config holds key lifecycle configuration.
type Config struct {
	// Policy supplies the regular and compliance rotation intervals applied
	// to every new key version.
	Policy rotationDomain.RotationPolicy

	// MaxRetryAttempts is the rotation retry budget. A key whose counter
	// exceeds this value parks in RotationFailed.
	MaxRetryAttempts uint

	// LockLease bounds how long a rotation may hold the distributed lock
	// before a crashed holder stops blocking the key.
	LockLease time.Duration

	// HolderID identifies this process as a lock holder and audit actor.
	HolderID string
}

// Validate rejects configurations that would make every key rotate
// constantly or hold the rotation lock forever. Interval floors guard
// against unit mistakes such as an interval given in nanoseconds.
func (c Config) Validate() error {
	return customValidation.WrapValidationError(validation.Errors{
		"regular interval":    validation.Validate(c.Policy.RegularInterval, validation.Required, customValidation.MinDuration(time.Minute)),
		"compliance interval": validation.Validate(c.Policy.ComplianceInterval, validation.Required, customValidation.MinDuration(time.Minute)),
		"lock lease":          validation.Validate(c.LockLease, validation.Required, customValidation.MinDuration(time.Second)),
	}.Filter())
}

// keyUseCase implements the KeyUseCase interface for managed key lifecycle
// operations.
type keyUseCase struct {
	config         Config
	txManager      database.TxManager
	descriptorRepo KeyDescriptorRepository
	envelopeRepo   EnvelopeRepository
	lockService    LockService
	authority      KeyAuthority
	envelopeCache  EnvelopeCache
	auditRecorder  AuditRecorder
}

// callActor builds the audit actor context for an authority-backed operation.
func (k *keyUseCase) callActor(info authorityDomain.CallInfo) auditDomain.ActorContext {
	return auditDomain.ActorContext{
		"authority_region":   info.Region,
		"degraded":           info.Degraded,
		"authority_attempts": info.Attempts,
		"holder_id":          k.config.HolderID,
	}
}

// Create provisions a new managed key under the given alias.
//
// The creation process:
//  1. Validates the alias and region formats
//  2. Rejects the alias if any version already exists
//  3. Generates a new key identifier and enables rotation at the authority
//  4. Wraps an initial data key under the authority's root key
//  5. Persists the version-1 descriptor and its wrapped envelope atomically
//
// The new descriptor starts Active with rotation deadlines computed from the
// configured policy.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - aliasName: The stable alias clients encrypt under (e.g., "payments")
//   - regionPrimary: The authority region serving this key
//   - regionDR: The disaster-recovery region, empty when none is configured
//
// Returns:
//   - The created KeyDescriptor with version 1 and state Active
//   - ErrInvalidInput for a malformed alias or region, ErrKeyAlreadyExists if
//     the alias is taken, or an error if the authority or database operations
//     fail
//
// Example:
//
//	descriptor, err := keyUC.Create(ctx, "payments", "us-east-1", "us-west-2")
//	if err != nil {
//	    log.Fatalf("Failed to create key: %v", err)
//	}
//	fmt.Printf("Created %s version %d\n", descriptor.AliasName, descriptor.Version)
func (k *keyUseCase) Create(
	ctx context.Context,
	aliasName, regionPrimary, regionDR string,
) (*rotationDomain.KeyDescriptor, error) {
	if err := validateKeyInput(aliasName, regionPrimary, regionDR); err != nil {
		return nil, err
	}

	// Reject duplicate aliases
	_, err := k.descriptorRepo.GetLatest(ctx, aliasName)
	if err == nil {
		return nil, rotationDomain.ErrKeyAlreadyExists
	}
	if !apperrors.Is(err, rotationDomain.ErrKeyNotFound) {
		return nil, err
	}

	keyID := uuid.Must(uuid.NewV7()).String()

	// Enable rotation at the authority before any local state exists
	if _, err := k.authority.EnableRotation(ctx, keyID); err != nil {
		return nil, err
	}

	// Wrap the initial data key under the root key
	envelope, info, err := k.authority.WrapKey(ctx, keyID)
	if err != nil {
		return nil, err
	}
	defer envelope.Zero()

	now := time.Now().UTC()
	nextRegular, nextCompliance := k.config.Policy.Deadlines(now)

	descriptor := &rotationDomain.KeyDescriptor{
		ID:                       uuid.Must(uuid.NewV7()),
		KeyID:                    keyID,
		AliasName:                aliasName,
		RegionPrimary:            regionPrimary,
		RegionDR:                 regionDR,
		Version:                  envelope.KeyVersion,
		State:                    rotationDomain.KeyStateActive,
		CreatedAt:                now,
		NextRegularRotationAt:    nextRegular,
		NextComplianceRotationAt: nextCompliance,
	}

	// Persist descriptor and envelope atomically
	err = k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := k.descriptorRepo.Create(txCtx, descriptor); err != nil {
			return err
		}
		return k.envelopeRepo.Create(txCtx, &rotationDomain.KeyEnvelope{
			ID:                 uuid.Must(uuid.NewV7()),
			KeyID:              keyID,
			KeyVersion:         envelope.KeyVersion,
			WrappedKeyMaterial: envelope.WrappedKeyMaterial,
			CreatedAt:          now,
		})
	})
	if err != nil {
		return nil, err
	}

	err = k.auditRecorder.Record(
		ctx,
		auditDomain.OperationCreateKey,
		keyID,
		descriptor.Version,
		auditDomain.OutcomeSuccess,
		k.callActor(info),
	)
	if err != nil {
		return nil, err
	}

	return descriptor, nil
}

// Rotate advances the alias to a new key version.
//
// Rotation limits the blast radius of a compromised data key: after rotation
// new encryptions use the new version while existing ciphertext remains
// decryptable under its original version.
//
// The rotation process:
//  1. Loads the latest version; RotationFailed keys require an operator Reset
//     first and Retired latest versions are rejected
//  2. Acquires the distributed rotation lock; contention returns
//     ErrLockContention immediately so schedulers can skip and move on
//  3. Reloads under the lock; if another holder already rotated, returns the
//     fresh version as an idempotent success
//  4. Marks the current version Rotating, advances the authority (or adopts
//     an authority version a crashed prior attempt already advanced), wraps a
//     new data key, and commits retire-old/create-new/persist-envelope in one
//     transaction
//  5. Drops cached data keys for the key and records the audit trail
//
// On failure the current version returns to Active with its retry counter
// incremented; a counter past the configured budget parks the key in
// RotationFailed and the returned error wraps ErrRotationExhausted.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - aliasName: The alias to rotate
//
// Returns:
//   - The new Active KeyDescriptor with an advanced version
//   - An error if the key is unknown, locked, exhausted, or any step fails
//
// Example:
//
//	descriptor, err := keyUC.Rotate(ctx, "payments")
//	if err != nil {
//	    log.Fatalf("Rotation failed: %v", err)
//	}
//	fmt.Printf("Rotated to version %d\n", descriptor.Version)
func (k *keyUseCase) Rotate(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	current, err := k.descriptorRepo.GetLatest(ctx, aliasName)
	if err != nil {
		return nil, err
	}

	switch current.State {
	case rotationDomain.KeyStateRotationFailed:
		return nil, rotationDomain.ErrRotationExhausted
	case rotationDomain.KeyStateRetired:
		return nil, rotationDomain.ErrKeyState
	}

	if _, err := k.lockService.Acquire(ctx, current.KeyID, k.config.HolderID, k.config.LockLease); err != nil {
		return nil, err
	}
	defer func() {
		if err := k.lockService.Release(ctx, current.KeyID, k.config.HolderID); err != nil {
			slog.Warn("rotation lock release failed",
				slog.String("key_id", current.KeyID),
				slog.String("holder_id", k.config.HolderID),
				slog.Any("error", err),
			)
		}
	}()

	// Reload under the lock: another holder may have completed a rotation
	// between our first read and the lock acquisition
	latest, err := k.descriptorRepo.GetLatest(ctx, aliasName)
	if err != nil {
		return nil, err
	}
	if latest.Version != current.Version {
		return latest, nil
	}

	// Make the in-flight rotation observable before touching the authority
	latest.State = rotationDomain.KeyStateRotating
	if err := k.descriptorRepo.Update(ctx, latest); err != nil {
		return nil, err
	}

	newDescriptor, info, err := k.performRotation(ctx, latest)
	if err != nil {
		return nil, k.recordRotationFailure(ctx, latest, info, err)
	}

	// Plaintext data keys of the retired version must not outlive rotation
	if err := k.envelopeCache.InvalidateKey(ctx, latest.KeyID); err != nil {
		return nil, err
	}

	err = k.auditRecorder.Record(
		ctx,
		auditDomain.OperationRotateKey,
		latest.KeyID,
		newDescriptor.Version,
		auditDomain.OutcomeSuccess,
		k.callActor(info),
	)
	if err != nil {
		return nil, err
	}

	return newDescriptor, nil
}

// performRotation advances the authority, wraps a new data key, and commits
// the version swap. The returned CallInfo describes the last authority call
// made, so failures report the call that broke.
func (k *keyUseCase) performRotation(
	ctx context.Context,
	latest *rotationDomain.KeyDescriptor,
) (*rotationDomain.KeyDescriptor, authorityDomain.CallInfo, error) {
	metadata, info, err := k.authority.DescribeKey(ctx, latest.KeyID)
	if err != nil {
		return nil, info, err
	}

	// Converge instead of advancing twice: a prior attempt may have advanced
	// the authority version and crashed before the local commit
	if metadata.CurrentVersion <= latest.Version {
		if _, info, err = k.authority.RotateKey(ctx, latest.KeyID); err != nil {
			return nil, info, err
		}
	}

	// WrapKey stamps the envelope with the authority's current version
	envelope, info, err := k.authority.WrapKey(ctx, latest.KeyID)
	if err != nil {
		return nil, info, err
	}
	defer envelope.Zero()

	now := time.Now().UTC()
	nextRegular, nextCompliance := k.config.Policy.Deadlines(now)

	newDescriptor := &rotationDomain.KeyDescriptor{
		ID:                       uuid.Must(uuid.NewV7()),
		KeyID:                    latest.KeyID,
		AliasName:                latest.AliasName,
		RegionPrimary:            latest.RegionPrimary,
		RegionDR:                 latest.RegionDR,
		Version:                  envelope.KeyVersion,
		State:                    rotationDomain.KeyStateActive,
		CreatedAt:                now,
		LastRotatedAt:            &now,
		NextRegularRotationAt:    nextRegular,
		NextComplianceRotationAt: nextCompliance,
	}

	err = k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		latest.State = rotationDomain.KeyStateRetired
		if err := k.descriptorRepo.Update(txCtx, latest); err != nil {
			return err
		}
		if err := k.descriptorRepo.Create(txCtx, newDescriptor); err != nil {
			return err
		}
		return k.envelopeRepo.Create(txCtx, &rotationDomain.KeyEnvelope{
			ID:                 uuid.Must(uuid.NewV7()),
			KeyID:              latest.KeyID,
			KeyVersion:         envelope.KeyVersion,
			WrappedKeyMaterial: envelope.WrappedKeyMaterial,
			CreatedAt:          now,
		})
	})
	if err != nil {
		return nil, info, err
	}

	return newDescriptor, info, nil
}

// recordRotationFailure returns the key to Active, burns a retry attempt, and
// records the failure audit. Past the retry budget the key parks in
// RotationFailed and the returned error wraps ErrRotationExhausted.
func (k *keyUseCase) recordRotationFailure(
	ctx context.Context,
	latest *rotationDomain.KeyDescriptor,
	info authorityDomain.CallInfo,
	cause error,
) error {
	latest.RetryAttempts++
	latest.State = rotationDomain.KeyStateActive

	failure := cause
	if latest.RetryAttempts > k.config.MaxRetryAttempts {
		latest.State = rotationDomain.KeyStateRotationFailed
		failure = apperrors.Wrapf(
			rotationDomain.ErrRotationExhausted,
			"rotation failed after %d attempts: %s", latest.RetryAttempts, cause,
		)
	}

	if err := k.descriptorRepo.Update(ctx, latest); err != nil {
		slog.Error("failed to persist rotation failure state",
			slog.String("alias_name", latest.AliasName),
			slog.String("key_id", latest.KeyID),
			slog.Any("error", err),
		)
	}

	actor := k.callActor(info)
	actor["error"] = cause.Error()
	err := k.auditRecorder.Record(
		ctx,
		auditDomain.OperationRotateKey,
		latest.KeyID,
		latest.Version,
		auditDomain.OutcomeFailure,
		actor,
	)
	if err != nil {
		slog.Error("failed to record rotation failure audit",
			slog.String("key_id", latest.KeyID),
			slog.Any("error", err),
		)
	}

	return failure
}

// Describe returns every version of the alias, newest first.
func (k *keyUseCase) Describe(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error) {
	return k.descriptorRepo.ListByAlias(ctx, aliasName)
}

// List returns key descriptors across all aliases with pagination.
func (k *keyUseCase) List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error) {
	return k.descriptorRepo.List(ctx, offset, limit)
}

// Reset clears a RotationFailed key back to Active with a fresh retry budget.
//
// Reset is an operator action: it acknowledges that whatever broke rotation
// (an authority outage, a misconfigured region) has been addressed. The next
// scheduler pass or manual rotation retries from a clean slate.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - aliasName: The alias to reset
//
// Returns:
//   - The descriptor back in Active state with RetryAttempts zeroed
//   - ErrKeyState if the latest version is not in RotationFailed
func (k *keyUseCase) Reset(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	latest, err := k.descriptorRepo.GetLatest(ctx, aliasName)
	if err != nil {
		return nil, err
	}
	if latest.State != rotationDomain.KeyStateRotationFailed {
		return nil, rotationDomain.ErrKeyState
	}

	latest.State = rotationDomain.KeyStateActive
	latest.RetryAttempts = 0
	if err := k.descriptorRepo.Update(ctx, latest); err != nil {
		return nil, err
	}

	err = k.auditRecorder.Record(
		ctx,
		auditDomain.OperationResetKey,
		latest.KeyID,
		latest.Version,
		auditDomain.OutcomeSuccess,
		auditDomain.ActorContext{"holder_id": k.config.HolderID},
	)
	if err != nil {
		return nil, err
	}

	return latest, nil
}

// validateKeyInput checks alias and region formats before any authority or
// database side effect happens.
func validateKeyInput(aliasName, regionPrimary, regionDR string) error {
	if err := validation.Validate(aliasName, validation.Required, customValidation.AliasName, validation.Length(1, 255)); err != nil {
		return customValidation.WrapValidationError(fmt.Errorf("alias name: %s", err))
	}
	if err := validation.Validate(regionPrimary, validation.Required, customValidation.Region); err != nil {
		return customValidation.WrapValidationError(fmt.Errorf("primary region: %s", err))
	}
	if regionDR != "" {
		if err := validation.Validate(regionDR, customValidation.Region); err != nil {
			return customValidation.WrapValidationError(fmt.Errorf("dr region: %s", err))
		}
	}
	return nil
}

// NewKeyUseCase creates a new key lifecycle use case with the provided
// dependencies.
//
// Parameters:
//   - config: Rotation policy, retry budget, lock lease, and holder identity
//   - txManager: Transaction manager for atomic version swaps
//   - descriptorRepo: Repository for key descriptor persistence
//   - envelopeRepo: Repository for wrapped data key persistence
//   - lockService: Distributed rotation lock
//   - authority: Multi-region root-key authority adapter
//   - envelopeCache: Cache invalidation for rotated keys
//   - auditRecorder: Audit trail for lifecycle operations
//
// Returns:
//   - A fully initialized KeyUseCase ready for use
func NewKeyUseCase(
	config Config,
	txManager database.TxManager,
	descriptorRepo KeyDescriptorRepository,
	envelopeRepo EnvelopeRepository,
	lockService LockService,
	authority KeyAuthority,
	envelopeCache EnvelopeCache,
	auditRecorder AuditRecorder,
) KeyUseCase {
	return &keyUseCase{
		config:         config,
		txManager:      txManager,
		descriptorRepo: descriptorRepo,
		envelopeRepo:   envelopeRepo,
		lockService:    lockService,
		authority:      authority,
		envelopeCache:  envelopeCache,
		auditRecorder:  auditRecorder,
	}
}

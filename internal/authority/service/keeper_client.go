package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gocloud.dev/gcerrors"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// metaVersionField and friends are the fields of the authority metadata hash.
const (
	metaVersionField         = "version"
	metaCreatedAtField       = "created_at"
	metaRotationEnabledField = "rotation_enabled"
)

// KeeperClient is the production Client for one region. Wrap and unwrap go
// through a gocloud.dev keeper holding the region's root key; key metadata
// (current version, rotation flag) lives in the shared metadata store because
// the portable keeper API exposes no metadata operations. Keepers are opened
// lazily per key identifier and cached until Close.
type KeeperClient struct {
	region      string
	uriTemplate string
	opener      KeeperOpener
	meta        *redis.Client

	mu      sync.Mutex
	keepers map[string]authorityDomain.Keeper
}

// NewKeeperClient creates a KeeperClient for a region. The uriTemplate may
// contain a %s placeholder that receives the key identifier; a template
// without a placeholder is used verbatim for every key.
func NewKeeperClient(
	region string,
	uriTemplate string,
	opener KeeperOpener,
	meta *redis.Client,
) *KeeperClient {
	return &KeeperClient{
		region:      region,
		uriTemplate: uriTemplate,
		opener:      opener,
		meta:        meta,
		keepers:     make(map[string]authorityDomain.Keeper),
	}
}

// Region identifies the region this client talks to.
func (k *KeeperClient) Region() string {
	return k.region
}

// WrapKey generates a fresh 32-byte data key, wraps it under the region's
// root key, and stamps the envelope with the authority's current key version.
func (k *KeeperClient) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, error) {
	metadata, err := k.DescribeKey(ctx, keyID)
	if err != nil {
		return authorityDomain.DataKeyEnvelope{}, err
	}

	plaintext := make([]byte, 32)
	if _, err := rand.Read(plaintext); err != nil {
		return authorityDomain.DataKeyEnvelope{}, apperrors.Wrap(err, "failed to generate data key")
	}

	keeper, err := k.getKeeper(ctx, keyID)
	if err != nil {
		authorityDomain.ZeroBytes(plaintext)
		return authorityDomain.DataKeyEnvelope{}, err
	}

	wrapped, err := keeper.Encrypt(ctx, plaintext)
	if err != nil {
		authorityDomain.ZeroBytes(plaintext)
		return authorityDomain.DataKeyEnvelope{}, classifyAuthorityError(err, "failed to wrap data key")
	}

	return authorityDomain.DataKeyEnvelope{
		KeyID:                keyID,
		KeyVersion:           metadata.CurrentVersion,
		WrappedKeyMaterial:   wrapped,
		PlaintextKeyMaterial: plaintext,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// UnwrapKey decrypts the wrapped key material in the envelope.
func (k *KeeperClient) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, error) {
	keeper, err := k.getKeeper(ctx, envelope.KeyID)
	if err != nil {
		return nil, err
	}

	plaintext, err := keeper.Decrypt(ctx, envelope.WrappedKeyMaterial)
	if err != nil {
		return nil, classifyAuthorityError(err, "failed to unwrap data key")
	}

	return plaintext, nil
}

// RotateKey advances the authority's key version and returns the new version.
func (k *KeeperClient) RotateKey(ctx context.Context, keyID string) (uint, error) {
	if err := k.initMetadata(ctx, keyID); err != nil {
		return 0, err
	}

	newVersion, err := k.meta.HIncrBy(ctx, k.metaKey(keyID), metaVersionField, 1).Result()
	if err != nil {
		return 0, classifyAuthorityError(err, "failed to rotate key")
	}

	return uint(newVersion), nil
}

// DescribeKey returns the authority's metadata for the key, initializing the
// metadata record on first contact.
func (k *KeeperClient) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, error) {
	if err := k.initMetadata(ctx, keyID); err != nil {
		return authorityDomain.KeyMetadata{}, err
	}

	values, err := k.meta.HGetAll(ctx, k.metaKey(keyID)).Result()
	if err != nil {
		return authorityDomain.KeyMetadata{}, classifyAuthorityError(err, "failed to describe key")
	}

	version, err := strconv.ParseUint(values[metaVersionField], 10, 64)
	if err != nil {
		return authorityDomain.KeyMetadata{}, apperrors.Wrap(err, "invalid key version in metadata")
	}

	createdAtUnix, err := strconv.ParseInt(values[metaCreatedAtField], 10, 64)
	if err != nil {
		return authorityDomain.KeyMetadata{}, apperrors.Wrap(err, "invalid created_at in metadata")
	}

	return authorityDomain.KeyMetadata{
		KeyID:           keyID,
		CurrentVersion:  uint(version),
		RotationEnabled: values[metaRotationEnabledField] == "1",
		CreatedAt:       time.Unix(createdAtUnix, 0).UTC(),
		Region:          k.region,
	}, nil
}

// EnableRotation marks the key as rotatable at the authority.
func (k *KeeperClient) EnableRotation(ctx context.Context, keyID string) error {
	if err := k.initMetadata(ctx, keyID); err != nil {
		return err
	}

	if err := k.meta.HSet(ctx, k.metaKey(keyID), metaRotationEnabledField, 1).Err(); err != nil {
		return classifyAuthorityError(err, "failed to enable rotation")
	}

	return nil
}

// Close closes every opened keeper.
func (k *KeeperClient) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for keyID, keeper := range k.keepers {
		if err := keeper.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close keeper for %s: %w", keyID, err))
		}
	}
	k.keepers = make(map[string]authorityDomain.Keeper)

	return errors.Join(errs...)
}

// initMetadata creates the metadata hash for a key on first contact.
func (k *KeeperClient) initMetadata(ctx context.Context, keyID string) error {
	key := k.metaKey(keyID)

	if err := k.meta.HSetNX(ctx, key, metaVersionField, 1).Err(); err != nil {
		return classifyAuthorityError(err, "failed to initialize key metadata")
	}
	if err := k.meta.HSetNX(ctx, key, metaCreatedAtField, time.Now().UTC().Unix()).Err(); err != nil {
		return classifyAuthorityError(err, "failed to initialize key metadata")
	}
	if err := k.meta.HSetNX(ctx, key, metaRotationEnabledField, 0).Err(); err != nil {
		return classifyAuthorityError(err, "failed to initialize key metadata")
	}

	return nil
}

// getKeeper returns the cached keeper for a key, opening it on first use.
func (k *KeeperClient) getKeeper(
	ctx context.Context,
	keyID string,
) (authorityDomain.Keeper, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if keeper, ok := k.keepers[keyID]; ok {
		return keeper, nil
	}

	keeper, err := k.opener.OpenKeeper(ctx, k.keyURI(keyID))
	if err != nil {
		return nil, classifyAuthorityError(err, "failed to open keeper")
	}
	k.keepers[keyID] = keeper

	return keeper, nil
}

// keyURI resolves the keeper URI for a key identifier.
func (k *KeeperClient) keyURI(keyID string) string {
	if strings.Contains(k.uriTemplate, "%s") {
		return fmt.Sprintf(k.uriTemplate, keyID)
	}
	return k.uriTemplate
}

// metaKey is the metadata hash key for a key identifier.
func (k *KeeperClient) metaKey(keyID string) string {
	return fmt.Sprintf("authority:key:%s:%s", k.region, keyID)
}

// classifyAuthorityError maps low-level call failures onto the authority error
// classes. Caller cancellation propagates untouched; network-shaped failures
// become transient so the retry policy can absorb them; definitive responses
// (unknown key, bad argument) pass through without a transient marker.
func classifyAuthorityError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(
			apperrors.Wrap(authorityDomain.ErrTransientAuthority, err.Error()),
			message,
		)
	}

	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return apperrors.Wrap(
			apperrors.Wrap(authorityDomain.ErrKeyNotFound, err.Error()),
			message,
		)
	case gcerrors.InvalidArgument, gcerrors.PermissionDenied, gcerrors.Unimplemented,
		gcerrors.FailedPrecondition:
		return apperrors.Wrap(err, message)
	default:
		// Unknown, Internal, ResourceExhausted, DeadlineExceeded and raw
		// transport errors are all worth retrying.
		return apperrors.Wrap(
			apperrors.Wrap(authorityDomain.ErrTransientAuthority, err.Error()),
			message,
		)
	}
}

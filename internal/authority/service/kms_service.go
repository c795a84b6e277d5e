package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsKeeperOpener implements KeeperOpener using gocloud.dev/secrets.
type kmsKeeperOpener struct{}

// NewKeeperOpener creates a KeeperOpener backed by gocloud.dev/secrets.
func NewKeeperOpener() KeeperOpener {
	return &kmsKeeperOpener{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsKeeperOpener) OpenKeeper(
	ctx context.Context,
	keyURI string,
) (authorityDomain.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

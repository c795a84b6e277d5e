package domain

import (
	"context"
)

// Keeper is the subset of a KMS keeper used for wrapping and unwrapping data
// keys. *secrets.Keeper from gocloud.dev implements it.
type Keeper interface {
	// Encrypt encrypts plaintext with the root key behind this keeper.
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with the root key behind this keeper.
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)

	// Close releases resources held by the keeper.
	Close() error
}

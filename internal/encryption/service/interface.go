// Package service provides the AEAD ciphers used for payload encryption.
// Data keys come from the envelope layer; this package only turns a 32-byte
// key into an authenticated cipher (AES-256-GCM or ChaCha20-Poly1305).
package service

import (
	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg encryptionDomain.Algorithm) (AEAD, error)
}

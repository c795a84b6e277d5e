package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// AES-GCM provides authenticated encryption: the 16-byte GMAC tag appended
// to every ciphertext makes tampering detectable before any plaintext is
// returned. With AES-NI hardware acceleration it is the fastest option on
// server CPUs and is the default payload algorithm.
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce, randomly generated per encryption
//   - 16-byte authentication tag appended to the ciphertext
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from
//	multiple goroutines. Each encryption generates its nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits) and should come from a
// cryptographically secure source; data keys generated by the root-key
// authority satisfy this.
//
// Returns:
//   - A new AESGCMCipher ready for encryption and decryption
//   - ErrInvalidKeySize if the key is not 32 bytes
//   - An error if the underlying cipher cannot be initialized
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, encryptionDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with optional additional
// authenticated data.
//
// The AAD is authenticated but not encrypted; it binds the ciphertext to
// outside context so it cannot be replayed elsewhere. Pass nil when no
// additional data needs authentication.
//
// A fresh 12-byte nonce is drawn from crypto/rand on every call. Nonce
// reuse under the same key breaks GCM, so callers must never cache or
// replay nonces; the returned nonce is stored alongside the ciphertext for
// decryption.
//
// Returns:
//   - ciphertext: the encrypted data with the authentication tag appended
//   - nonce: the randomly generated 12-byte nonce used for this encryption
//   - err: any error from nonce generation
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using AES-256-GCM with the provided nonce and
// AAD.
//
// The authentication tag is verified before any plaintext is returned;
// a modified ciphertext, a wrong nonce, or mismatched AAD all fail without
// leaking partial output.
//
// Returns:
//   - plaintext: the decrypted data
//   - err: an error if authentication fails or the inputs are malformed
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

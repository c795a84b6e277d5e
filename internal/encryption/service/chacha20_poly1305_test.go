package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
)

func TestNewChaCha20Poly1305(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewChaCha20Poly1305(key)
		require.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("key too short", func(t *testing.T) {
		_, err := NewChaCha20Poly1305(make([]byte, 16))
		assert.ErrorIs(t, err, encryptionDomain.ErrInvalidKeySize)
	})

	t.Run("key too long", func(t *testing.T) {
		_, err := NewChaCha20Poly1305(make([]byte, 64))
		assert.ErrorIs(t, err, encryptionDomain.ErrInvalidKeySize)
	})
}

func TestChaCha20Poly1305Cipher_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	t.Run("round-trip without AAD", func(t *testing.T) {
		plaintext := []byte("sensitive payload data")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, nonce, encryptionDomain.NonceSize)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("round-trip with AAD", func(t *testing.T) {
		plaintext := []byte("sensitive payload data")
		aad := []byte("record-42")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("tampered tag fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("data"), nil)
		require.NoError(t, err)

		// The Poly1305 tag occupies the final 16 bytes.
		ciphertext[len(ciphertext)-1] ^= 0xff
		_, err = cipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
	})

	t.Run("wrong nonce fails authentication", func(t *testing.T) {
		ciphertext, _, err := cipher.Encrypt([]byte("data"), nil)
		require.NoError(t, err)

		wrongNonce := make([]byte, encryptionDomain.NonceSize)
		_, err = cipher.Decrypt(ciphertext, wrongNonce, nil)
		assert.Error(t, err)
	})
}

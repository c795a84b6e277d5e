// Package domain defines the payload encryption domain models: the AEAD
// algorithm selection and the versioned encrypted blob format.
package domain

// Algorithm selects the AEAD used for payload encryption.
//
// Both algorithms take 256-bit data keys and provide authenticated
// encryption, so ciphertext tampering is always detected. AESGCM is the
// default and benefits from AES-NI hardware acceleration; ChaCha20 performs
// better on CPUs without it.
type Algorithm string

const (
	// AESGCM is AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// NonceSize is the nonce length in bytes shared by both supported AEADs.
// Encrypted payloads store the nonce prepended to the ciphertext, so
// decryption depends on this size being stable.
const NonceSize = 12

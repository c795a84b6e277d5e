package domain

import (
	"time"
)

// DataKeyEnvelope carries a data key wrapped by a root key held at the remote
// authority. The wrapped form is safe at rest and may be persisted or cached;
// the plaintext form exists only transiently in memory while an encryption or
// decryption operation holds it.
type DataKeyEnvelope struct {
	KeyID              string
	KeyVersion         uint
	WrappedKeyMaterial []byte
	// PlaintextKeyMaterial is never written to durable storage or logs.
	// Holders must call Zero as soon as the key material has been used.
	PlaintextKeyMaterial []byte
	CreatedAt            time.Time
	ExpiresAt            time.Time
}

// Zero overwrites the plaintext key material so it does not linger in memory.
func (e *DataKeyEnvelope) Zero() {
	ZeroBytes(e.PlaintextKeyMaterial)
	e.PlaintextKeyMaterial = nil
}

// ZeroBytes securely overwrites a byte slice with zeros to clear sensitive data from memory.
func ZeroBytes(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

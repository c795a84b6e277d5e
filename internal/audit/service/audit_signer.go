package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// hmacSigner signs audit records with HMAC-SHA256 using a key derived from
// the audit signing secret via HKDF-SHA256.
type hmacSigner struct {
	secret []byte
}

// deriveSigningKey derives a 32-byte signing key from the configured secret.
// The info string is versioned so a future algorithm change can derive a
// distinct key from the same secret.
func (h *hmacSigner) deriveSigningKey() ([]byte, error) {
	info := []byte("audit-record-signing-v1")
	reader := hkdf.New(sha256.New, h.secret, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive audit signing key")
	}

	return signingKey, nil
}

// canonicalize converts the record to the canonical byte representation
// covered by the signature. Variable-length fields carry a 4-byte length
// prefix so no two distinct records share an encoding; fixed-width fields
// (UUID, version, timestamp) are appended raw.
func (h *hmacSigner) canonicalize(record *auditDomain.AuditRecord) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, record.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(record.Operation))
	buf = appendLengthPrefixed(buf, []byte(record.KeyID))

	version := make([]byte, 8)
	binary.BigEndian.PutUint64(version, uint64(record.KeyVersion))
	buf = append(buf, version...)

	buf = appendLengthPrefixed(buf, []byte(record.Outcome))

	// encoding/json emits map keys in sorted order, so the actor context
	// serialization is deterministic. A nil context encodes as length zero.
	if record.ActorContext != nil {
		actorJSON, err := json.Marshal(record.ActorContext)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal actor context for signing")
		}
		buf = appendLengthPrefixed(buf, actorJSON)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timestamp := make([]byte, 8)
	binary.BigEndian.PutUint64(timestamp, uint64(record.CreatedAt.UnixNano()))
	buf = append(buf, timestamp...)

	return buf, nil
}

// appendLengthPrefixed appends a 4-byte big-endian length prefix followed by
// the data bytes.
func appendLengthPrefixed(buf, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature for the audit record.
func (h *hmacSigner) Sign(record *auditDomain.AuditRecord) ([]byte, error) {
	signingKey, err := h.deriveSigningKey()
	if err != nil {
		return nil, err
	}
	defer authorityDomain.ZeroBytes(signingKey)

	canonical, err := h.canonicalize(record)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the stored signature against the recomputed one.
func (h *hmacSigner) Verify(record *auditDomain.AuditRecord) error {
	expected, err := h.Sign(record)
	if err != nil {
		return err
	}

	if !hmac.Equal(record.Signature, expected) {
		return auditDomain.ErrSignatureMismatch
	}

	return nil
}

// NewHMACSigner creates an audit record signer deriving its signing key from
// the given secret.
func NewHMACSigner(secret []byte) Signer {
	return &hmacSigner{secret: secret}
}

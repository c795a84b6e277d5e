// Package service provides technical services for audit records: signature
// generation and verification, and publication to external sinks.
package service

import (
	"context"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// Signer signs audit records and verifies stored signatures.
// Implementations must produce deterministic signatures so a stored record
// can be re-verified after a database round trip.
type Signer interface {
	// Sign computes the signature over the record's canonical encoding.
	// The Signature field itself is never part of the signed payload.
	Sign(record *auditDomain.AuditRecord) ([]byte, error)

	// Verify recomputes the record's signature and compares it against the
	// stored one. Returns auditDomain.ErrSignatureMismatch when the record
	// was altered after signing.
	Verify(record *auditDomain.AuditRecord) error
}

// Emitter publishes audit records to an external streaming sink.
type Emitter interface {
	Emit(ctx context.Context, record *auditDomain.AuditRecord) error

	// Close flushes pending messages and releases the underlying connection.
	Close() error
}

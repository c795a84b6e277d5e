// Package domain defines the audit record model for key management and
// data-plane operations.
//
// Every key lifecycle operation (create, rotate, reset) and every data-plane
// operation (encrypt, decrypt, reencrypt) produces exactly one audit record.
// Records are signed with an HMAC derived from the audit signing secret so
// tampering with stored records is detectable, and are append-only: nothing
// in the system updates an audit record after creation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome records whether the audited operation succeeded.
type Outcome string

// Valid audit outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Operation names recorded in audit records.
const (
	OperationCreateKey = "create_key"
	OperationRotateKey = "rotate_key"
	OperationResetKey  = "reset_key"
	OperationEncrypt   = "encrypt"
	OperationDecrypt   = "decrypt"
	OperationReencrypt = "reencrypt"
)

// ActorContext carries request-scoped attributes about who performed the
// operation and how it was served: authority region, degraded-mode flag,
// attempt count, rotation holder, client identifiers.
type ActorContext map[string]any

// AuditRecord is a signed, append-only record of a single operation.
//
// CreatedAt is truncated to microsecond precision at creation time because
// both PostgreSQL and MySQL store at most microseconds; the signature covers
// the stored precision so records verify after a database round trip.
type AuditRecord struct {
	ID           uuid.UUID    `json:"id"`
	Operation    string       `json:"operation"`
	KeyID        string       `json:"key_id"`
	KeyVersion   uint         `json:"key_version"`
	Outcome      Outcome      `json:"outcome"`
	ActorContext ActorContext `json:"actor_context"`
	Signature    []byte       `json:"signature"`
	CreatedAt    time.Time    `json:"created_at"`
}

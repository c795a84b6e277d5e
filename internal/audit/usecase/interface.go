// Package usecase implements business logic orchestration for audit records:
// signing and persisting each operation's record, streaming to Kafka when
// configured, and the admin sweeps that verify and prune stored history.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// AuditRecordRepository defines the persistence operations the audit use
// case depends on. The store is append-only: there is no update, and the
// only delete path is the retention sweep.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *auditDomain.AuditRecord) error
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditRecord, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// VerificationReport summarizes a signature sweep over stored audit records.
type VerificationReport struct {
	TotalChecked   int64
	ValidCount     int64
	InvalidCount   int64
	InvalidRecords []uuid.UUID
}

// AuditUseCase defines audit record operations.
type AuditUseCase interface {
	// Record signs and persists one audit record for an operation outcome.
	// Whether a failed write fails the audited operation is controlled by
	// Config.Required.
	Record(
		ctx context.Context,
		operation string,
		keyID string,
		keyVersion uint,
		outcome auditDomain.Outcome,
		actor auditDomain.ActorContext,
	) error

	// List retrieves audit records newest first with pagination and
	// optional inclusive time filtering (nil means no bound).
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditRecord, error)

	// Verify re-checks the signature of every record created inside the
	// given time range and reports the ones that no longer verify.
	Verify(ctx context.Context, createdAtFrom, createdAtTo time.Time) (*VerificationReport, error)

	// Clean removes records created before olderThan. Retention is an
	// external policy: nothing in the service calls this, it backs an
	// admin command only. With dryRun it reports the count untouched.
	Clean(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// auditUseCaseWithMetrics decorates AuditUseCase with metrics instrumentation.
type auditUseCaseWithMetrics struct {
	next    AuditUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditUseCaseWithMetrics wraps an AuditUseCase with metrics recording.
func NewAuditUseCaseWithMetrics(useCase AuditUseCase, m metrics.BusinessMetrics) AuditUseCase {
	return &auditUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Record records metrics for audit record creation.
func (a *auditUseCaseWithMetrics) Record(
	ctx context.Context,
	operation string,
	keyID string,
	keyVersion uint,
	outcome auditDomain.Outcome,
	actor auditDomain.ActorContext,
) error {
	start := time.Now()
	err := a.next.Record(ctx, operation, keyID, keyVersion, outcome, actor)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "record", status)
	a.metrics.RecordDuration(ctx, "audit", "record", time.Since(start), status)

	return err
}

// List records metrics for audit record list operations.
func (a *auditUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditRecord, error) {
	start := time.Now()
	records, err := a.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "list", status)
	a.metrics.RecordDuration(ctx, "audit", "list", time.Since(start), status)

	return records, err
}

// Verify records metrics for audit trail verification sweeps.
func (a *auditUseCaseWithMetrics) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := a.next.Verify(ctx, createdAtFrom, createdAtTo)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "verify", status)
	a.metrics.RecordDuration(ctx, "audit", "verify", time.Since(start), status)

	return report, err
}

// Clean records metrics for audit retention sweeps.
func (a *auditUseCaseWithMetrics) Clean(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	start := time.Now()
	count, err := a.next.Clean(ctx, olderThan, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "clean", status)
	a.metrics.RecordDuration(ctx, "audit", "clean", time.Since(start), status)

	return count, err
}

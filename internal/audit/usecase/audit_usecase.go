package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	auditService "github.com/allisson/keyvault/internal/audit/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// verifyBatchSize is the page size the Verify sweep reads per repository call.
const verifyBatchSize = 500

// Config carries audit recording behavior.
type Config struct {
	// Required fails the audited operation when its record cannot be
	// written. When false, sink failures are logged and the operation
	// proceeds without a record.
	Required bool
}

// auditUseCase implements AuditUseCase.
type auditUseCase struct {
	config          Config
	auditRecordRepo AuditRecordRepository
	signer          auditService.Signer
	emitter         auditService.Emitter
	logger          *slog.Logger
}

// Record builds, signs, and persists one audit record, then streams it to
// the emitter when one is configured.
//
// Process:
//  1. Assign a UUIDv7 identifier and a UTC timestamp truncated to
//     microseconds, the precision both databases store.
//  2. Sign the canonical encoding.
//  3. Persist through the repository.
//  4. Publish to the streaming emitter when one is configured.
//
// With Config.Required set, any failure comes back wrapped in
// auditDomain.ErrAuditUnavailable and the caller must fail its operation.
// Otherwise failures are logged and nil is returned.
func (a *auditUseCase) Record(
	ctx context.Context,
	operation string,
	keyID string,
	keyVersion uint,
	outcome auditDomain.Outcome,
	actor auditDomain.ActorContext,
) error {
	record := &auditDomain.AuditRecord{
		ID:           uuid.Must(uuid.NewV7()),
		Operation:    operation,
		KeyID:        keyID,
		KeyVersion:   keyVersion,
		Outcome:      outcome,
		ActorContext: actor,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	signature, err := a.signer.Sign(record)
	if err != nil {
		return a.sinkFailure(record, apperrors.Wrap(err, "failed to sign audit record"))
	}
	record.Signature = signature

	if err := a.auditRecordRepo.Create(ctx, record); err != nil {
		return a.sinkFailure(record, apperrors.Wrap(err, "failed to persist audit record"))
	}

	if a.emitter != nil {
		if err := a.emitter.Emit(ctx, record); err != nil {
			return a.sinkFailure(record, apperrors.Wrap(err, "failed to emit audit record"))
		}
	}

	return nil
}

// sinkFailure applies the audit-required policy to a failed record write.
func (a *auditUseCase) sinkFailure(record *auditDomain.AuditRecord, err error) error {
	if a.config.Required {
		return apperrors.Wrapf(auditDomain.ErrAuditUnavailable, "%s", err)
	}

	a.logger.Warn("audit record dropped",
		slog.String("operation", record.Operation),
		slog.String("key_id", record.KeyID),
		slog.Uint64("key_version", uint64(record.KeyVersion)),
		slog.Any("error", err),
	)
	return nil
}

// List retrieves audit records ordered by created_at descending (newest
// first) with pagination and optional inclusive time filtering.
func (a *auditUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditRecord, error) {
	records, err := a.auditRecordRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}

	return records, nil
}

// Verify sweeps every record created inside the time range, recomputes its
// signature, and reports the records that no longer verify. Reads in pages
// of verifyBatchSize so the sweep handles histories larger than memory.
func (a *auditUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo time.Time,
) (*VerificationReport, error) {
	report := &VerificationReport{InvalidRecords: make([]uuid.UUID, 0)}

	for offset := 0; ; offset += verifyBatchSize {
		records, err := a.auditRecordRepo.List(ctx, offset, verifyBatchSize, &createdAtFrom, &createdAtTo)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit records for verification")
		}
		if len(records) == 0 {
			break
		}

		for _, record := range records {
			report.TotalChecked++

			if err := a.signer.Verify(record); err != nil {
				if apperrors.Is(err, auditDomain.ErrSignatureMismatch) {
					report.InvalidCount++
					report.InvalidRecords = append(report.InvalidRecords, record.ID)
					continue
				}
				return nil, err
			}

			report.ValidCount++
		}

		if len(records) < verifyBatchSize {
			break
		}
	}

	return report, nil
}

// Clean removes audit records created before olderThan, or only counts them
// when dryRun is set.
func (a *auditUseCase) Clean(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error) {
	count, err := a.auditRecordRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clean audit records")
	}

	if !dryRun {
		a.logger.Info("audit records removed",
			slog.Int64("count", count),
			slog.Time("older_than", olderThan),
		)
	}

	return count, nil
}

// NewAuditUseCase creates a new AuditUseCase with the provided dependencies.
// The emitter may be nil when no streaming sink is configured. A nil logger
// falls back to slog.Default().
func NewAuditUseCase(
	config Config,
	auditRecordRepo AuditRecordRepository,
	signer auditService.Signer,
	emitter auditService.Emitter,
	logger *slog.Logger,
) AuditUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &auditUseCase{
		config:          config,
		auditRecordRepo: auditRecordRepo,
		signer:          signer,
		emitter:         emitter,
		logger:          logger,
	}
}

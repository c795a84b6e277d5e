// Package repository implements audit record persistence for PostgreSQL and
// MySQL databases. The audit_records table is append-only: nothing in the
// system updates a record after creation, and the only delete path is the
// retention sweep driven by an admin command.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// PostgreSQLAuditRecordRepository implements audit record persistence for
// PostgreSQL databases.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - operation: VARCHAR
//   - key_id: VARCHAR
//   - key_version: BIGINT
//   - outcome: VARCHAR
//   - actor_context: JSONB (nullable)
//   - signature: BYTEA
//   - created_at: TIMESTAMP
type PostgreSQLAuditRecordRepository struct {
	db *sql.DB
}

// Create inserts a new audit record. Uses transaction support via
// database.GetTx(). Handles a nil actor context as database NULL.
func (p *PostgreSQLAuditRecordRepository) Create(
	ctx context.Context,
	record *auditDomain.AuditRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	var actorJSON []byte
	var err error

	if record.ActorContext != nil {
		actorJSON, err = json.Marshal(record.ActorContext)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit record actor context")
		}
	}

	query := `INSERT INTO audit_records (id, operation, key_id, key_version, outcome, actor_context, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Operation,
		record.KeyID,
		record.KeyVersion,
		string(record.Outcome),
		actorJSON,
		record.Signature,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}

	return nil
}

// List retrieves audit records ordered by created_at descending (newest
// first) with pagination and optional time filtering. createdAtFrom and
// createdAtTo are optional (nil means no filter) and both boundaries are
// inclusive. Returns an empty slice if no records match.
func (p *PostgreSQLAuditRecordRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, p.db)

	// Build the WHERE clause with numbered placeholders based on the
	// provided filters.
	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, operation, key_id, key_version, outcome, actor_context, signature, created_at
			  FROM audit_records`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*auditDomain.AuditRecord, 0)
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}

// DeleteOlderThan removes audit records created before the given timestamp.
// When dryRun is true, returns the count via SELECT COUNT(*) without
// deleting anything; otherwise executes the DELETE and returns the number of
// affected rows.
func (p *PostgreSQLAuditRecordRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_records WHERE created_at < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit records")
		}
		return count, nil
	}

	query := `DELETE FROM audit_records WHERE created_at < $1`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit records")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// scanAuditRecord scans a single row into an AuditRecord, unmarshaling the
// actor context when it is not NULL.
func scanAuditRecord(rows *sql.Rows) (*auditDomain.AuditRecord, error) {
	var record auditDomain.AuditRecord
	var actorJSON []byte
	var outcome string

	err := rows.Scan(
		&record.ID,
		&record.Operation,
		&record.KeyID,
		&record.KeyVersion,
		&outcome,
		&actorJSON,
		&record.Signature,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan audit record")
	}

	record.Outcome = auditDomain.Outcome(outcome)

	if actorJSON != nil {
		if err := json.Unmarshal(actorJSON, &record.ActorContext); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record actor context")
		}
	}

	return &record, nil
}

// NewPostgreSQLAuditRecordRepository creates a new PostgreSQL audit record
// repository instance.
func NewPostgreSQLAuditRecordRepository(db *sql.DB) *PostgreSQLAuditRecordRepository {
	return &PostgreSQLAuditRecordRepository{db: db}
}

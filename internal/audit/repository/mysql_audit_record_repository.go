package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// MySQLAuditRecordRepository implements audit record persistence for MySQL
// databases.
//
// Database schema requirements:
//   - id: CHAR(36) PRIMARY KEY (UUID string form)
//   - operation: VARCHAR
//   - key_id: VARCHAR
//   - key_version: BIGINT
//   - outcome: VARCHAR
//   - actor_context: JSON (nullable)
//   - signature: BLOB
//   - created_at: DATETIME(6)
type MySQLAuditRecordRepository struct {
	db *sql.DB
}

// Create inserts a new audit record. Uses transaction support via
// database.GetTx(). Handles a nil actor context as database NULL.
func (m *MySQLAuditRecordRepository) Create(
	ctx context.Context,
	record *auditDomain.AuditRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	var actorJSON []byte
	var err error

	if record.ActorContext != nil {
		actorJSON, err = json.Marshal(record.ActorContext)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit record actor context")
		}
	}

	query := `INSERT INTO audit_records (id, operation, key_id, key_version, outcome, actor_context, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

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
func (m *MySQLAuditRecordRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, m.db)

	// Build the WHERE clause based on the provided filters.
	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}

	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, operation, key_id, key_version, outcome, actor_context, signature, created_at
			  FROM audit_records`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
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
func (m *MySQLAuditRecordRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_records WHERE created_at < ?`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit records")
		}
		return count, nil
	}

	query := `DELETE FROM audit_records WHERE created_at < ?`
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

// NewMySQLAuditRecordRepository creates a new MySQL audit record repository
// instance.
func NewMySQLAuditRecordRepository(db *sql.DB) *MySQLAuditRecordRepository {
	return &MySQLAuditRecordRepository{db: db}
}

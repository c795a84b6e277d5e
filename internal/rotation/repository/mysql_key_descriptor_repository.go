package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MySQLKeyDescriptorRepository implements key descriptor persistence for
// MySQL databases.
//
// Database schema requirements:
//   - id: CHAR(36) PRIMARY KEY (UUID string form)
//   - key_id: VARCHAR(255)
//   - alias_name: VARCHAR(255) (unique together with version)
//   - region_primary, region_dr: VARCHAR(64)
//   - version: BIGINT UNSIGNED
//   - state: VARCHAR(32)
//   - retry_attempts: BIGINT UNSIGNED
//   - created_at: TIMESTAMP
//   - last_rotated_at: TIMESTAMP NULL
//   - next_regular_rotation_at, next_compliance_rotation_at: TIMESTAMP
//   - UNIQUE constraint on (alias_name, version)
//
// The MySQL connection string must include parseTime=true so TIMESTAMP
// columns scan into time.Time.
type MySQLKeyDescriptorRepository struct {
	db *sql.DB
}

const mysqlKeyDescriptorColumns = `id, key_id, alias_name, region_primary, region_dr, version, state,
	retry_attempts, created_at, last_rotated_at, next_regular_rotation_at, next_compliance_rotation_at`

// Create inserts a new key descriptor row.
func (m *MySQLKeyDescriptorRepository) Create(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_descriptors (id, key_id, alias_name, region_primary, region_dr, version, state,
			  retry_attempts, created_at, last_rotated_at, next_regular_rotation_at, next_compliance_rotation_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		descriptor.ID,
		descriptor.KeyID,
		descriptor.AliasName,
		descriptor.RegionPrimary,
		descriptor.RegionDR,
		descriptor.Version,
		descriptor.State,
		descriptor.RetryAttempts,
		descriptor.CreatedAt,
		descriptor.LastRotatedAt,
		descriptor.NextRegularRotationAt,
		descriptor.NextComplianceRotationAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key descriptor")
	}
	return nil
}

// Update modifies the mutable fields of an existing key descriptor.
func (m *MySQLKeyDescriptorRepository) Update(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_descriptors
			  SET state = ?,
				  retry_attempts = ?,
				  last_rotated_at = ?,
				  next_regular_rotation_at = ?,
				  next_compliance_rotation_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		descriptor.State,
		descriptor.RetryAttempts,
		descriptor.LastRotatedAt,
		descriptor.NextRegularRotationAt,
		descriptor.NextComplianceRotationAt,
		descriptor.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update key descriptor")
	}

	return nil
}

// GetEncryptable retrieves the single encryptable descriptor for an alias.
//
// Returns rotationDomain.ErrKeyNotFound if the alias has no encryptable
// version.
func (m *MySQLKeyDescriptorRepository) GetEncryptable(
	ctx context.Context,
	alias string,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = ? AND state IN (?, ?, ?)
			  ORDER BY version DESC
			  LIMIT 1`

	row := querier.QueryRowContext(
		ctx,
		query,
		alias,
		rotationDomain.KeyStateActive,
		rotationDomain.KeyStatePendingRotation,
		rotationDomain.KeyStateRotating,
	)

	return scanMySQLKeyDescriptor(row, "failed to get encryptable key descriptor")
}

// GetByAliasAndVersion retrieves a specific version of an alias, regardless
// of state.
func (m *MySQLKeyDescriptorRepository) GetByAliasAndVersion(
	ctx context.Context,
	alias string,
	version uint,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = ? AND version = ?`

	row := querier.QueryRowContext(ctx, query, alias, version)

	return scanMySQLKeyDescriptor(row, "failed to get key descriptor by alias and version")
}

// GetLatest retrieves the highest-version descriptor for an alias, regardless
// of state.
func (m *MySQLKeyDescriptorRepository) GetLatest(
	ctx context.Context,
	alias string,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = ?
			  ORDER BY version DESC
			  LIMIT 1`

	row := querier.QueryRowContext(ctx, query, alias)

	return scanMySQLKeyDescriptor(row, "failed to get latest key descriptor")
}

// ListByAlias retrieves every version of an alias ordered by version
// descending (newest first).
func (m *MySQLKeyDescriptorRepository) ListByAlias(
	ctx context.Context,
	alias string,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = ?
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query, alias)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key descriptors by alias")
	}

	return collectMySQLKeyDescriptors(rows)
}

// List retrieves descriptors across aliases ordered by alias name and version
// descending, with offset/limit pagination.
func (m *MySQLKeyDescriptorRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  ORDER BY alias_name ASC, version DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key descriptors")
	}

	return collectMySQLKeyDescriptors(rows)
}

// ListDue retrieves encryptable descriptors whose regular or compliance
// rotation deadline has passed, oldest deadline first, bounded by limit.
func (m *MySQLKeyDescriptorRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE state IN (?, ?, ?)
				AND (next_regular_rotation_at <= ? OR next_compliance_rotation_at <= ?)
			  ORDER BY LEAST(next_regular_rotation_at, next_compliance_rotation_at) ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(
		ctx,
		query,
		rotationDomain.KeyStateActive,
		rotationDomain.KeyStatePendingRotation,
		rotationDomain.KeyStateRotating,
		now,
		now,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due key descriptors")
	}

	return collectMySQLKeyDescriptors(rows)
}

func scanMySQLKeyDescriptor(
	row *sql.Row,
	failureMessage string,
) (*rotationDomain.KeyDescriptor, error) {
	var descriptor rotationDomain.KeyDescriptor
	err := row.Scan(
		&descriptor.ID,
		&descriptor.KeyID,
		&descriptor.AliasName,
		&descriptor.RegionPrimary,
		&descriptor.RegionDR,
		&descriptor.Version,
		&descriptor.State,
		&descriptor.RetryAttempts,
		&descriptor.CreatedAt,
		&descriptor.LastRotatedAt,
		&descriptor.NextRegularRotationAt,
		&descriptor.NextComplianceRotationAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rotationDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, failureMessage)
	}

	return &descriptor, nil
}

func collectMySQLKeyDescriptors(rows *sql.Rows) ([]*rotationDomain.KeyDescriptor, error) {
	defer func() {
		_ = rows.Close()
	}()

	var descriptors []*rotationDomain.KeyDescriptor
	for rows.Next() {
		var descriptor rotationDomain.KeyDescriptor

		err := rows.Scan(
			&descriptor.ID,
			&descriptor.KeyID,
			&descriptor.AliasName,
			&descriptor.RegionPrimary,
			&descriptor.RegionDR,
			&descriptor.Version,
			&descriptor.State,
			&descriptor.RetryAttempts,
			&descriptor.CreatedAt,
			&descriptor.LastRotatedAt,
			&descriptor.NextRegularRotationAt,
			&descriptor.NextComplianceRotationAt,
		)
		if err != nil {
			return nil, err
		}

		descriptors = append(descriptors, &descriptor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return descriptors, nil
}

// NewMySQLKeyDescriptorRepository creates a new MySQL key descriptor
// repository instance.
func NewMySQLKeyDescriptorRepository(db *sql.DB) *MySQLKeyDescriptorRepository {
	return &MySQLKeyDescriptorRepository{db: db}
}

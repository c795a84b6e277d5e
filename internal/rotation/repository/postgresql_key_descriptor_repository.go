// Package repository implements data persistence for managed key descriptors
// and wrapped data key envelopes.
//
// This package provides repository implementations for the key rotation state
// machine in PostgreSQL and MySQL databases. Repositories follow the Repository
// pattern and support both direct database operations and transactional
// operations.
//
// # Key Components
//
// The package includes repositories for:
//   - KeyDescriptor: One row per (alias, version) of a managed key
//   - DataKeyEnvelope: Append-only wrapped data key material per key version
//
// # Database Support
//
// Each repository type has two implementations:
//   - PostgreSQL: Uses native UUID type and BYTEA for binary data
//   - MySQL: Uses CHAR(36) for UUIDs and BLOB for binary data
//
// # Transaction Support
//
// All repositories support transaction-aware operations via database.GetTx(),
// enabling atomic multi-step operations such as rotation commits, where the
// old descriptor is retired, the new descriptor is inserted, and the new
// envelope is persisted in a single transaction.
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

// PostgreSQLKeyDescriptorRepository implements key descriptor persistence for
// PostgreSQL databases.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - key_id: TEXT (identifier of the root key at the remote authority)
//   - alias_name: TEXT (logical key name; unique together with version)
//   - region_primary, region_dr: TEXT
//   - version: BIGINT
//   - state: VARCHAR(32)
//   - retry_attempts: BIGINT
//   - created_at: TIMESTAMP WITH TIME ZONE
//   - last_rotated_at: TIMESTAMP WITH TIME ZONE (nullable)
//   - next_regular_rotation_at, next_compliance_rotation_at: TIMESTAMP WITH TIME ZONE
//   - UNIQUE constraint on (alias_name, version)
//
// Transaction support:
//
//	The repository automatically detects transaction context using
//	database.GetTx(). All methods work both within and outside of
//	transactions seamlessly.
type PostgreSQLKeyDescriptorRepository struct {
	db *sql.DB
}

const postgresKeyDescriptorColumns = `id, key_id, alias_name, region_primary, region_dr, version, state,
	retry_attempts, created_at, last_rotated_at, next_regular_rotation_at, next_compliance_rotation_at`

// Create inserts a new key descriptor row.
//
// Parameters:
//   - ctx: Context for cancellation, timeouts, and transaction propagation
//   - descriptor: The descriptor to insert (must have all required fields populated)
//
// Returns:
//   - An error if the insert fails (e.g., duplicate alias+version)
func (p *PostgreSQLKeyDescriptorRepository) Create(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_descriptors (id, key_id, alias_name, region_primary, region_dr, version, state,
			  retry_attempts, created_at, last_rotated_at, next_regular_rotation_at, next_compliance_rotation_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

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
//
// The rotation state machine is the only writer: state, retry_attempts,
// last_rotated_at, and both rotation deadlines change during rotation; the
// identity fields never do.
//
// Parameters:
//   - ctx: Context for cancellation, timeouts, and transaction propagation
//   - descriptor: The descriptor with updated field values (ID must match an existing row)
//
// Returns:
//   - An error if the update fails
func (p *PostgreSQLKeyDescriptorRepository) Update(
	ctx context.Context,
	descriptor *rotationDomain.KeyDescriptor,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_descriptors
			  SET state = $1,
				  retry_attempts = $2,
				  last_rotated_at = $3,
				  next_regular_rotation_at = $4,
				  next_compliance_rotation_at = $5
			  WHERE id = $6`

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
// Exactly one row per alias is in an encryptable state (Active,
// PendingRotation, or Rotating) at any time; Retired and RotationFailed rows
// are excluded.
//
// Returns:
//   - The encryptable descriptor for the alias
//   - rotationDomain.ErrKeyNotFound if the alias has no encryptable version
func (p *PostgreSQLKeyDescriptorRepository) GetEncryptable(
	ctx context.Context,
	alias string,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = $1 AND state IN ($2, $3, $4)
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

	return scanPostgresKeyDescriptor(row, "failed to get encryptable key descriptor")
}

// GetByAliasAndVersion retrieves a specific version of an alias, regardless
// of state. Retired versions stay reachable so historical ciphertext remains
// decryptable.
//
// Returns:
//   - The descriptor matching the alias and version
//   - rotationDomain.ErrKeyNotFound if no such version exists
func (p *PostgreSQLKeyDescriptorRepository) GetByAliasAndVersion(
	ctx context.Context,
	alias string,
	version uint,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = $1 AND version = $2`

	row := querier.QueryRowContext(ctx, query, alias, version)

	return scanPostgresKeyDescriptor(row, "failed to get key descriptor by alias and version")
}

// GetLatest retrieves the highest-version descriptor for an alias, regardless
// of state. Used by reset and describe operations that must see
// RotationFailed rows.
//
// Returns:
//   - The latest descriptor for the alias
//   - rotationDomain.ErrKeyNotFound if the alias does not exist
func (p *PostgreSQLKeyDescriptorRepository) GetLatest(
	ctx context.Context,
	alias string,
) (*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = $1
			  ORDER BY version DESC
			  LIMIT 1`

	row := querier.QueryRowContext(ctx, query, alias)

	return scanPostgresKeyDescriptor(row, "failed to get latest key descriptor")
}

// ListByAlias retrieves every version of an alias ordered by version
// descending (newest first).
func (p *PostgreSQLKeyDescriptorRepository) ListByAlias(
	ctx context.Context,
	alias string,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE alias_name = $1
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query, alias)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key descriptors by alias")
	}

	return collectPostgresKeyDescriptors(rows)
}

// List retrieves descriptors across aliases ordered by alias name and version
// descending, with offset/limit pagination.
func (p *PostgreSQLKeyDescriptorRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  ORDER BY alias_name ASC, version DESC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key descriptors")
	}

	return collectPostgresKeyDescriptors(rows)
}

// ListDue retrieves encryptable descriptors whose regular or compliance
// rotation deadline has passed, oldest deadline first, bounded by limit.
//
// Rotating rows are included so a rotation interrupted by a crash is retried
// once the previous holder's lock lease expires.
func (p *PostgreSQLKeyDescriptorRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*rotationDomain.KeyDescriptor, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresKeyDescriptorColumns + `
			  FROM key_descriptors
			  WHERE state IN ($1, $2, $3)
				AND (next_regular_rotation_at <= $4 OR next_compliance_rotation_at <= $4)
			  ORDER BY LEAST(next_regular_rotation_at, next_compliance_rotation_at) ASC
			  LIMIT $5`

	rows, err := querier.QueryContext(
		ctx,
		query,
		rotationDomain.KeyStateActive,
		rotationDomain.KeyStatePendingRotation,
		rotationDomain.KeyStateRotating,
		now,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due key descriptors")
	}

	return collectPostgresKeyDescriptors(rows)
}

func scanPostgresKeyDescriptor(
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

func collectPostgresKeyDescriptors(rows *sql.Rows) ([]*rotationDomain.KeyDescriptor, error) {
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

// NewPostgreSQLKeyDescriptorRepository creates a new PostgreSQL key descriptor
// repository instance.
func NewPostgreSQLKeyDescriptorRepository(db *sql.DB) *PostgreSQLKeyDescriptorRepository {
	return &PostgreSQLKeyDescriptorRepository{db: db}
}

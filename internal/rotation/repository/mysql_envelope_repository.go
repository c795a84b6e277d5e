package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MySQLEnvelopeRepository implements wrapped data key persistence for MySQL
// databases.
//
// Database schema requirements:
//   - id: CHAR(36) PRIMARY KEY (UUID string form)
//   - key_id: VARCHAR(255)
//   - key_version: BIGINT UNSIGNED
//   - wrapped_key_material: BLOB
//   - created_at: TIMESTAMP
//   - UNIQUE constraint on (key_id, key_version)
type MySQLEnvelopeRepository struct {
	db *sql.DB
}

// Create inserts the wrapped envelope for a key version.
func (m *MySQLEnvelopeRepository) Create(
	ctx context.Context,
	envelope *rotationDomain.KeyEnvelope,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_envelopes (id, key_id, key_version, wrapped_key_material, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		envelope.ID,
		envelope.KeyID,
		envelope.KeyVersion,
		envelope.WrappedKeyMaterial,
		envelope.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key envelope")
	}
	return nil
}

// Get retrieves the wrapped envelope for a key version.
func (m *MySQLEnvelopeRepository) Get(
	ctx context.Context,
	keyID string,
	version uint,
) (*rotationDomain.KeyEnvelope, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, key_id, key_version, wrapped_key_material, created_at
			  FROM key_envelopes
			  WHERE key_id = ? AND key_version = ?`

	var envelope rotationDomain.KeyEnvelope
	err := querier.QueryRowContext(ctx, query, keyID, version).Scan(
		&envelope.ID,
		&envelope.KeyID,
		&envelope.KeyVersion,
		&envelope.WrappedKeyMaterial,
		&envelope.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rotationDomain.ErrEnvelopeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key envelope")
	}

	return &envelope, nil
}

// NewMySQLEnvelopeRepository creates a new MySQL envelope repository instance.
func NewMySQLEnvelopeRepository(db *sql.DB) *MySQLEnvelopeRepository {
	return &MySQLEnvelopeRepository{db: db}
}

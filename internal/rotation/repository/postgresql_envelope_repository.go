package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// PostgreSQLEnvelopeRepository implements wrapped data key persistence for
// PostgreSQL databases.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - key_id: TEXT
//   - key_version: BIGINT
//   - wrapped_key_material: BYTEA
//   - created_at: TIMESTAMP WITH TIME ZONE
//   - UNIQUE constraint on (key_id, key_version)
//
// The table is append-only: rotation inserts one envelope per new version and
// nothing updates or deletes rows, which keeps every historical version
// decryptable.
type PostgreSQLEnvelopeRepository struct {
	db *sql.DB
}

// Create inserts the wrapped envelope for a key version.
//
// Supports transaction context via database.GetTx(), so the envelope insert
// can commit atomically with the rotation's descriptor changes.
func (p *PostgreSQLEnvelopeRepository) Create(
	ctx context.Context,
	envelope *rotationDomain.KeyEnvelope,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_envelopes (id, key_id, key_version, wrapped_key_material, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

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
//
// Returns rotationDomain.ErrEnvelopeNotFound if no envelope exists for the
// key version.
func (p *PostgreSQLEnvelopeRepository) Get(
	ctx context.Context,
	keyID string,
	version uint,
) (*rotationDomain.KeyEnvelope, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, key_version, wrapped_key_material, created_at
			  FROM key_envelopes
			  WHERE key_id = $1 AND key_version = $2`

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

// NewPostgreSQLEnvelopeRepository creates a new PostgreSQL envelope repository
// instance.
func NewPostgreSQLEnvelopeRepository(db *sql.DB) *PostgreSQLEnvelopeRepository {
	return &PostgreSQLEnvelopeRepository{db: db}
}

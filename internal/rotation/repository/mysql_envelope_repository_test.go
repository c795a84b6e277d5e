package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	"github.com/allisson/keyvault/internal/testutil"
)

func TestMySQLEnvelopeRepository_Create(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLEnvelopeRepository(db)
	ctx := context.Background()

	envelope := testKeyEnvelope("key-payments", 1)
	require.NoError(t, repo.Create(ctx, envelope))

	read, err := repo.Get(ctx, "key-payments", 1)
	require.NoError(t, err)
	assert.Equal(t, envelope.ID, read.ID)
	assert.Equal(t, envelope.WrappedKeyMaterial, read.WrappedKeyMaterial)

	_, err = repo.Get(ctx, "key-payments", 2)
	assert.True(t, apperrors.Is(err, rotationDomain.ErrEnvelopeNotFound))
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	rotationMocks "github.com/allisson/keyvault/internal/rotation/usecase/mocks"
)

// testDescriptor builds a descriptor the way the use case returns it.
func testDescriptor(alias string, version uint, state rotationDomain.KeyState) *rotationDomain.KeyDescriptor {
	now := time.Now().UTC()
	return &rotationDomain.KeyDescriptor{
		ID:                       uuid.Must(uuid.NewV7()),
		KeyID:                    uuid.Must(uuid.NewV7()).String(),
		AliasName:                alias,
		RegionPrimary:            "us-east-1",
		RegionDR:                 "us-west-2",
		Version:                  version,
		State:                    state,
		CreatedAt:                now,
		NextRegularRotationAt:    now.Add(90 * 24 * time.Hour),
		NextComplianceRotationAt: now.Add(365 * 24 * time.Hour),
	}
}

func TestRunCreateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptor := testDescriptor("payments", 1, rotationDomain.KeyStateActive)
		mockUseCase.On("Create", ctx, "payments", "us-east-1", "us-west-2").
			Return(descriptor, nil)

		var out bytes.Buffer
		err := RunCreateKey(ctx, mockUseCase, logger, &out, "payments", "us-east-1", "us-west-2", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Key created successfully")
		require.Contains(t, out.String(), "payments")
		require.Contains(t, out.String(), "active")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptor := testDescriptor("payments", 1, rotationDomain.KeyStateActive)
		mockUseCase.On("Create", ctx, "payments", "us-east-1", "").
			Return(descriptor, nil)

		var out bytes.Buffer
		err := RunCreateKey(ctx, mockUseCase, logger, &out, "payments", "us-east-1", "", "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, "payments", result["alias_name"])
		require.Equal(t, float64(1), result["version"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		mockUseCase.On("Create", ctx, "payments", "us-east-1", "us-west-2").
			Return(nil, errors.New("alias already exists"))

		var out bytes.Buffer
		err := RunCreateKey(ctx, mockUseCase, logger, &out, "payments", "us-east-1", "us-west-2", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create key")
	})
}

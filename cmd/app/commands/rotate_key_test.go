package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	rotationMocks "github.com/allisson/keyvault/internal/rotation/usecase/mocks"
)

func TestRunRotateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptor := testDescriptor("payments", 2, rotationDomain.KeyStateActive)
		mockUseCase.On("Rotate", ctx, "payments").Return(descriptor, nil)

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &out, "payments", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Key rotated successfully")
		require.Contains(t, out.String(), "Version")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptor := testDescriptor("payments", 2, rotationDomain.KeyStateActive)
		mockUseCase.On("Rotate", ctx, "payments").Return(descriptor, nil)

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &out, "payments", "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(2), result["version"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		mockUseCase.On("Rotate", ctx, "payments").
			Return(nil, errors.New("rotation already in progress"))

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &out, "payments", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to rotate key")
	})
}

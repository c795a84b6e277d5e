package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	rotationMocks "github.com/allisson/keyvault/internal/rotation/usecase/mocks"
)

func TestRunResetKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptor := testDescriptor("payments", 3, rotationDomain.KeyStatePendingRotation)
		mockUseCase.On("Reset", ctx, "payments").Return(descriptor, nil)

		var out bytes.Buffer
		err := RunResetKey(ctx, mockUseCase, logger, &out, "payments", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Key reset successfully")
		require.Contains(t, out.String(), "pending_rotation")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		mockUseCase.On("Reset", ctx, "payments").
			Return(nil, errors.New("key is not in a failed state"))

		var out bytes.Buffer
		err := RunResetKey(ctx, mockUseCase, logger, &out, "payments", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to reset key")
	})
}

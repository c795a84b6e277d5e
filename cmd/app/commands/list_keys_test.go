package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	rotationMocks "github.com/allisson/keyvault/internal/rotation/usecase/mocks"
)

func TestRunListKeys(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptors := []*rotationDomain.KeyDescriptor{
			testDescriptor("payments", 1, rotationDomain.KeyStateActive),
			testDescriptor("invoices", 3, rotationDomain.KeyStateRotating),
		}
		mockUseCase.On("List", ctx, 0, 50).Return(descriptors, nil)

		var out bytes.Buffer
		err := RunListKeys(ctx, mockUseCase, logger, &out, 0, 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "payments")
		require.Contains(t, out.String(), "invoices")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		descriptors := []*rotationDomain.KeyDescriptor{
			testDescriptor("payments", 1, rotationDomain.KeyStateActive),
		}
		mockUseCase.On("List", ctx, 10, 20).Return(descriptors, nil)

		var out bytes.Buffer
		err := RunListKeys(ctx, mockUseCase, logger, &out, 10, 20, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(10), result["offset"])
		require.Equal(t, float64(20), result["limit"])
		keys, ok := result["keys"].([]interface{})
		require.True(t, ok)
		require.Len(t, keys, 1)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockKeyUseCase{}
		mockUseCase.On("List", ctx, 0, 50).Return([]*rotationDomain.KeyDescriptor{}, nil)

		var out bytes.Buffer
		err := RunListKeys(ctx, mockUseCase, logger, &out, 0, 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No keys found")
		mockUseCase.AssertExpectations(t)
	})
}

package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	encryptionMocks "github.com/allisson/keyvault/internal/encryption/usecase/mocks"
)

func TestRunDecrypt(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &encryptionMocks.MockEncryptionUseCase{}
		plaintext := []byte("super secret payload")
		mockUseCase.On("Decrypt", ctx, "payments:2:Y2lwaGVydGV4dA==").
			Return(plaintext, nil)

		var out bytes.Buffer
		err := RunDecrypt(ctx, mockUseCase, logger, &out, "payments:2:Y2lwaGVydGV4dA==")
		require.NoError(t, err)

		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out.String()))
		require.NoError(t, err)
		require.Equal(t, plaintext, decoded)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &encryptionMocks.MockEncryptionUseCase{}
		mockUseCase.On("Decrypt", ctx, "bad-blob").
			Return(nil, errors.New("invalid blob format"))

		var out bytes.Buffer
		err := RunDecrypt(ctx, mockUseCase, logger, &out, "bad-blob")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to decrypt")
	})
}

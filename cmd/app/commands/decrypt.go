package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	encryptionUseCase "github.com/allisson/keyvault/internal/encryption/usecase"
)

// RunDecrypt decrypts an encrypted blob and prints the payload as base64.
// The blob carries its own alias and version, so any retired version that
// has not been removed still decrypts.
func RunDecrypt(
	ctx context.Context,
	useCase encryptionUseCase.EncryptionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	blob string,
) error {
	plaintext, err := useCase.Decrypt(ctx, blob)
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}

	_, _ = fmt.Fprintln(writer, base64.StdEncoding.EncodeToString(plaintext))

	logger.Info("payload decrypted")

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	encryptionUseCase "github.com/allisson/keyvault/internal/encryption/usecase"
)

// RunReencrypt re-seals a blob's payload under its alias's current key
// version and prints the new blob. This is the migration path after a
// rotation: nothing re-encrypts stored data automatically.
func RunReencrypt(
	ctx context.Context,
	useCase encryptionUseCase.EncryptionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	blob string,
) error {
	newBlob, err := useCase.Reencrypt(ctx, blob)
	if err != nil {
		return fmt.Errorf("failed to reencrypt: %w", err)
	}

	_, _ = fmt.Fprintln(writer, newBlob.String())

	logger.Info("payload reencrypted",
		slog.String("alias", newBlob.AliasName),
		slog.Uint64("version", uint64(newBlob.Version)),
	)

	return nil
}

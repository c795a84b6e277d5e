package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	encryptionUseCase "github.com/allisson/keyvault/internal/encryption/usecase"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// RunEncrypt encrypts a base64-encoded payload under the alias's current key
// version and prints the resulting blob.
//
// Requirements: Database must be migrated and the key created.
func RunEncrypt(
	ctx context.Context,
	useCase encryptionUseCase.EncryptionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	alias string,
	plaintextB64 string,
) error {
	if err := validation.Validate(plaintextB64, validation.Required, customValidation.Base64); err != nil {
		return fmt.Errorf("invalid plaintext: %s", err)
	}

	plaintext, err := base64.StdEncoding.DecodeString(plaintextB64)
	if err != nil {
		return fmt.Errorf("invalid plaintext: %w", err)
	}

	blob, err := useCase.Encrypt(ctx, alias, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	_, _ = fmt.Fprintln(writer, blob.String())

	logger.Info("payload encrypted",
		slog.String("alias", blob.AliasName),
		slog.Uint64("version", uint64(blob.Version)),
	)

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// RunRotateKey rotates a managed key to a new version immediately, without
// waiting for a rotation deadline. The retired version stays decryptable.
//
// Requirements: Database must be migrated, Redis reachable for the rotation
// lock, and the root-key authority reachable.
func RunRotateKey(
	ctx context.Context,
	keyUseCase rotationUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	alias string,
	format string,
) error {
	logger.Info("rotating key", slog.String("alias", alias))

	descriptor, err := keyUseCase.Rotate(ctx, alias)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	if format == "json" {
		if err := outputDescriptorJSON(writer, descriptor); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Key rotated successfully\n\n")
		outputDescriptorText(writer, descriptor)
	}

	logger.Info("key rotated",
		slog.String("alias", descriptor.AliasName),
		slog.String("key_id", descriptor.KeyID),
		slog.Uint64("version", uint64(descriptor.Version)),
	)

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// RunResetKey clears a rotation-failed key's retry counter and returns it to
// the active state so scheduled rotation resumes. Only keys parked in the
// rotation-failed state can be reset.
func RunResetKey(
	ctx context.Context,
	keyUseCase rotationUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	alias string,
	format string,
) error {
	logger.Info("resetting key", slog.String("alias", alias))

	descriptor, err := keyUseCase.Reset(ctx, alias)
	if err != nil {
		return fmt.Errorf("failed to reset key: %w", err)
	}

	if format == "json" {
		if err := outputDescriptorJSON(writer, descriptor); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Key reset successfully\n\n")
		outputDescriptorText(writer, descriptor)
	}

	logger.Info("key reset",
		slog.String("alias", descriptor.AliasName),
		slog.Uint64("version", uint64(descriptor.Version)),
	)

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// RunCreateKey creates a managed key under an alias. The authority enables
// rotation for the root key, version 1 is wrapped and persisted, and the
// descriptor starts active with both rotation deadlines scheduled.
//
// Requirements: Database must be migrated and the root-key authority reachable.
func RunCreateKey(
	ctx context.Context,
	keyUseCase rotationUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	alias string,
	regionPrimary string,
	regionDR string,
	format string,
) error {
	logger.Info("creating key",
		slog.String("alias", alias),
		slog.String("region_primary", regionPrimary),
		slog.String("region_dr", regionDR),
	)

	descriptor, err := keyUseCase.Create(ctx, alias, regionPrimary, regionDR)
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	if format == "json" {
		if err := outputDescriptorJSON(writer, descriptor); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Key created successfully\n\n")
		outputDescriptorText(writer, descriptor)
	}

	logger.Info("key created",
		slog.String("alias", descriptor.AliasName),
		slog.String("key_id", descriptor.KeyID),
		slog.Uint64("version", uint64(descriptor.Version)),
	)

	return nil
}

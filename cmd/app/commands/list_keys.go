package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// RunListKeys lists the latest version of every managed key with pagination.
func RunListKeys(
	ctx context.Context,
	keyUseCase rotationUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	offset int,
	limit int,
	format string,
) error {
	descriptors, err := keyUseCase.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if format == "json" {
		keys := make([]map[string]interface{}, 0, len(descriptors))
		for _, descriptor := range descriptors {
			keys = append(keys, descriptorJSON(descriptor))
		}
		jsonBytes, err := json.MarshalIndent(map[string]interface{}{
			"offset": offset,
			"limit":  limit,
			"keys":   keys,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
	} else {
		if len(descriptors) == 0 {
			_, _ = fmt.Fprintf(writer, "No keys found\n")
		}
		for i, descriptor := range descriptors {
			if i > 0 {
				_, _ = fmt.Fprintf(writer, "\n")
			}
			outputDescriptorText(writer, descriptor)
		}
	}

	logger.Info("keys listed", slog.Int("count", len(descriptors)))

	return nil
}

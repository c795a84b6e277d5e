package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// RunDescribeKey shows every version of a managed key, newest first.
func RunDescribeKey(
	ctx context.Context,
	keyUseCase rotationUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	alias string,
	format string,
) error {
	descriptors, err := keyUseCase.Describe(ctx, alias)
	if err != nil {
		return fmt.Errorf("failed to describe key: %w", err)
	}

	if format == "json" {
		versions := make([]map[string]interface{}, 0, len(descriptors))
		for _, descriptor := range descriptors {
			versions = append(versions, descriptorJSON(descriptor))
		}
		jsonBytes, err := json.MarshalIndent(map[string]interface{}{
			"alias_name": alias,
			"versions":   versions,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
	} else {
		_, _ = fmt.Fprintf(writer, "Key: %s (%d version(s))\n", alias, len(descriptors))
		for _, descriptor := range descriptors {
			_, _ = fmt.Fprintf(writer, "\n")
			outputDescriptorText(writer, descriptor)
		}
	}

	logger.Info("key described",
		slog.String("alias", alias),
		slog.Int("versions", len(descriptors)),
	)

	return nil
}

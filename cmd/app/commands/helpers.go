// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/keyvault/internal/app"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// outputDescriptorText prints one key descriptor in human-readable form.
func outputDescriptorText(writer io.Writer, descriptor *rotationDomain.KeyDescriptor) {
	_, _ = fmt.Fprintf(writer, "Alias:                %s\n", descriptor.AliasName)
	_, _ = fmt.Fprintf(writer, "Key ID:               %s\n", descriptor.KeyID)
	_, _ = fmt.Fprintf(writer, "Version:              %d\n", descriptor.Version)
	_, _ = fmt.Fprintf(writer, "State:                %s\n", descriptor.State)
	_, _ = fmt.Fprintf(writer, "Primary Region:       %s\n", descriptor.RegionPrimary)
	if descriptor.RegionDR != "" {
		_, _ = fmt.Fprintf(writer, "DR Region:            %s\n", descriptor.RegionDR)
	}
	_, _ = fmt.Fprintf(writer, "Created At:           %s\n", descriptor.CreatedAt.Format(time.RFC3339))
	if descriptor.LastRotatedAt != nil {
		_, _ = fmt.Fprintf(writer, "Last Rotated At:      %s\n", descriptor.LastRotatedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(writer, "Next Regular Due:     %s\n", descriptor.NextRegularRotationAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Next Compliance Due:  %s\n", descriptor.NextComplianceRotationAt.Format(time.RFC3339))
	if descriptor.RetryAttempts > 0 {
		_, _ = fmt.Fprintf(writer, "Retry Attempts:       %d\n", descriptor.RetryAttempts)
	}
}

// descriptorJSON is the wire shape of one key descriptor in JSON output.
func descriptorJSON(descriptor *rotationDomain.KeyDescriptor) map[string]interface{} {
	result := map[string]interface{}{
		"id":                          descriptor.ID,
		"alias_name":                  descriptor.AliasName,
		"key_id":                      descriptor.KeyID,
		"version":                     descriptor.Version,
		"state":                       descriptor.State,
		"region_primary":              descriptor.RegionPrimary,
		"region_dr":                   descriptor.RegionDR,
		"retry_attempts":              descriptor.RetryAttempts,
		"created_at":                  descriptor.CreatedAt,
		"next_regular_rotation_at":    descriptor.NextRegularRotationAt,
		"next_compliance_rotation_at": descriptor.NextComplianceRotationAt,
	}
	if descriptor.LastRotatedAt != nil {
		result["last_rotated_at"] = *descriptor.LastRotatedAt
	}
	return result
}

// outputDescriptorJSON prints one key descriptor as indented JSON.
func outputDescriptorJSON(writer io.Writer, descriptor *rotationDomain.KeyDescriptor) error {
	jsonBytes, err := json.MarshalIndent(descriptorJSON(descriptor), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}

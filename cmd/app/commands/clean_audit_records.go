package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditUseCase "github.com/allisson/keyvault/internal/audit/usecase"
)

// RunCleanAuditRecords deletes audit records older than the specified number
// of days. Supports dry-run mode to preview the deletion count and both
// text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditRecords(
	ctx context.Context,
	useCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit records",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	// Execute deletion or count operation
	count, err := useCase.Clean(ctx, olderThan, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean audit records: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputCleanJSON(writer, count, days, dryRun); err != nil {
			return err
		}
	} else {
		outputCleanText(writer, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(writer io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d audit record(s) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit record(s) older than %d day(s)\n", count, days)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(writer io.Writer, count int64, days int, dryRun bool) error {
	result := map[string]interface{}{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}

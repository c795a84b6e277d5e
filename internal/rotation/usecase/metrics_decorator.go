package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyvault/internal/metrics"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for key creation operations.
func (k *keyUseCaseWithMetrics) Create(
	ctx context.Context,
	aliasName, regionPrimary, regionDR string,
) (*rotationDomain.KeyDescriptor, error) {
	start := time.Now()
	descriptor, err := k.next.Create(ctx, aliasName, regionPrimary, regionDR)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "rotation", "key_create", status)
	k.metrics.RecordDuration(ctx, "rotation", "key_create", time.Since(start), status)

	return descriptor, err
}

// Rotate records metrics for key rotation operations.
func (k *keyUseCaseWithMetrics) Rotate(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	start := time.Now()
	descriptor, err := k.next.Rotate(ctx, aliasName)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "rotation", "key_rotate", status)
	k.metrics.RecordDuration(ctx, "rotation", "key_rotate", time.Since(start), status)

	return descriptor, err
}

// Describe records metrics for key describe operations.
func (k *keyUseCaseWithMetrics) Describe(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error) {
	start := time.Now()
	descriptors, err := k.next.Describe(ctx, aliasName)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "rotation", "key_describe", status)
	k.metrics.RecordDuration(ctx, "rotation", "key_describe", time.Since(start), status)

	return descriptors, err
}

// List records metrics for key list operations.
func (k *keyUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error) {
	start := time.Now()
	descriptors, err := k.next.List(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "rotation", "key_list", status)
	k.metrics.RecordDuration(ctx, "rotation", "key_list", time.Since(start), status)

	return descriptors, err
}

// Reset records metrics for key reset operations.
func (k *keyUseCaseWithMetrics) Reset(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	start := time.Now()
	descriptor, err := k.next.Reset(ctx, aliasName)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "rotation", "key_reset", status)
	k.metrics.RecordDuration(ctx, "rotation", "key_reset", time.Since(start), status)

	return descriptor, err
}

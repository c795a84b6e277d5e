package usecase

import (
	"context"
	"time"

	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// encryptionUseCaseWithMetrics decorates EncryptionUseCase with metrics instrumentation.
type encryptionUseCaseWithMetrics struct {
	next    EncryptionUseCase
	metrics metrics.BusinessMetrics
}

// NewEncryptionUseCaseWithMetrics wraps an EncryptionUseCase with metrics recording.
func NewEncryptionUseCaseWithMetrics(useCase EncryptionUseCase, m metrics.BusinessMetrics) EncryptionUseCase {
	return &encryptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Encrypt records metrics for encrypt operations.
func (e *encryptionUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	aliasName string,
	plaintext []byte,
) (*encryptionDomain.EncryptedBlob, error) {
	start := time.Now()
	blob, err := e.next.Encrypt(ctx, aliasName, plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "encryption", "encrypt", status)
	e.metrics.RecordDuration(ctx, "encryption", "encrypt", time.Since(start), status)

	return blob, err
}

// Decrypt records metrics for decrypt operations.
func (e *encryptionUseCaseWithMetrics) Decrypt(ctx context.Context, content string) ([]byte, error) {
	start := time.Now()
	plaintext, err := e.next.Decrypt(ctx, content)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "encryption", "decrypt", status)
	e.metrics.RecordDuration(ctx, "encryption", "decrypt", time.Since(start), status)

	return plaintext, err
}

// Reencrypt records metrics for re-encrypt operations.
func (e *encryptionUseCaseWithMetrics) Reencrypt(
	ctx context.Context,
	content string,
) (*encryptionDomain.EncryptedBlob, error) {
	start := time.Now()
	blob, err := e.next.Reencrypt(ctx, content)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "encryption", "reencrypt", status)
	e.metrics.RecordDuration(ctx, "encryption", "reencrypt", time.Since(start), status)

	return blob, err
}

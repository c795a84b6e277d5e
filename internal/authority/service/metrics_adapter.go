package service

import (
	"context"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// adapterWithMetrics decorates an Adapter with metrics instrumentation.
// Besides the per-operation counters and durations, every degraded call is
// counted separately so failovers show up as their own series.
type adapterWithMetrics struct {
	next    Adapter
	metrics metrics.BusinessMetrics
}

// NewAdapterWithMetrics wraps an Adapter with metrics recording.
func NewAdapterWithMetrics(adapter Adapter, m metrics.BusinessMetrics) Adapter {
	return &adapterWithMetrics{
		next:    adapter,
		metrics: m,
	}
}

func (a *adapterWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	info authorityDomain.CallInfo,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "authority", operation, status)
	a.metrics.RecordDuration(ctx, "authority", operation, time.Since(start), status)

	if info.Degraded {
		a.metrics.RecordOperation(ctx, "authority", "failover", status)
	}
}

// WrapKey records metrics for data key generation calls.
func (a *adapterWithMetrics) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, authorityDomain.CallInfo, error) {
	start := time.Now()
	envelope, info, err := a.next.WrapKey(ctx, keyID)
	a.record(ctx, "wrap_key", start, info, err)
	return envelope, info, err
}

// UnwrapKey records metrics for data key unwrap calls.
func (a *adapterWithMetrics) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, authorityDomain.CallInfo, error) {
	start := time.Now()
	plaintext, info, err := a.next.UnwrapKey(ctx, envelope)
	a.record(ctx, "unwrap_key", start, info, err)
	return plaintext, info, err
}

// RotateKey records metrics for authority-side rotation calls.
func (a *adapterWithMetrics) RotateKey(
	ctx context.Context,
	keyID string,
) (uint, authorityDomain.CallInfo, error) {
	start := time.Now()
	version, info, err := a.next.RotateKey(ctx, keyID)
	a.record(ctx, "rotate_key", start, info, err)
	return version, info, err
}

// DescribeKey records metrics for key metadata calls.
func (a *adapterWithMetrics) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, authorityDomain.CallInfo, error) {
	start := time.Now()
	metadata, info, err := a.next.DescribeKey(ctx, keyID)
	a.record(ctx, "describe_key", start, info, err)
	return metadata, info, err
}

// EnableRotation records metrics for rotation-enablement calls.
func (a *adapterWithMetrics) EnableRotation(
	ctx context.Context,
	keyID string,
) (authorityDomain.CallInfo, error) {
	start := time.Now()
	info, err := a.next.EnableRotation(ctx, keyID)
	a.record(ctx, "enable_rotation", start, info, err)
	return info, err
}

package service

import (
	"context"
	"errors"
	"log/slog"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// FailoverAdapter is the top of the authority client stack. It routes every
// call to the primary region first and falls back to the disaster-recovery
// region when the primary is unavailable (retries exhausted or breaker open).
// The DR region holds an equivalent multi-region key for each identifier, so
// wrapped material from either region is interchangeable.
//
// A call served by the DR region is reported as degraded in its CallInfo even
// when it succeeds, so callers can audit the failover.
type FailoverAdapter struct {
	primary Client
	dr      Client
}

// NewFailoverAdapter creates a FailoverAdapter. dr may be nil for
// single-region deployments, in which case primary errors are returned as-is.
func NewFailoverAdapter(primary Client, dr Client) *FailoverAdapter {
	return &FailoverAdapter{primary: primary, dr: dr}
}

// WrapKey wraps a fresh data key, failing over to the DR region if needed.
func (f *FailoverAdapter) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, authorityDomain.CallInfo, error) {
	return failoverCall(ctx, f, "wrap_key",
		func(ctx context.Context, client Client) (authorityDomain.DataKeyEnvelope, error) {
			return client.WrapKey(ctx, keyID)
		},
	)
}

// UnwrapKey unwraps an envelope, failing over to the DR region if needed.
func (f *FailoverAdapter) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, authorityDomain.CallInfo, error) {
	return failoverCall(ctx, f, "unwrap_key",
		func(ctx context.Context, client Client) ([]byte, error) {
			return client.UnwrapKey(ctx, envelope)
		},
	)
}

// RotateKey advances the authority key version, failing over to the DR region
// if needed.
func (f *FailoverAdapter) RotateKey(
	ctx context.Context,
	keyID string,
) (uint, authorityDomain.CallInfo, error) {
	return failoverCall(ctx, f, "rotate_key",
		func(ctx context.Context, client Client) (uint, error) {
			return client.RotateKey(ctx, keyID)
		},
	)
}

// DescribeKey fetches key metadata, failing over to the DR region if needed.
func (f *FailoverAdapter) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, authorityDomain.CallInfo, error) {
	return failoverCall(ctx, f, "describe_key",
		func(ctx context.Context, client Client) (authorityDomain.KeyMetadata, error) {
			return client.DescribeKey(ctx, keyID)
		},
	)
}

// EnableRotation enables rotation at the authority, failing over to the DR
// region if needed.
func (f *FailoverAdapter) EnableRotation(
	ctx context.Context,
	keyID string,
) (authorityDomain.CallInfo, error) {
	_, info, err := failoverCall(ctx, f, "enable_rotation",
		func(ctx context.Context, client Client) (struct{}, error) {
			return struct{}{}, client.EnableRotation(ctx, keyID)
		},
	)
	return info, err
}

func failoverCall[T any](
	ctx context.Context,
	f *FailoverAdapter,
	operation string,
	fn func(ctx context.Context, client Client) (T, error),
) (T, authorityDomain.CallInfo, error) {
	ctx, stats := withCallStats(ctx)

	result, err := fn(ctx, f.primary)
	if err == nil {
		return result, callInfo(f.primary, false, stats), nil
	}
	if !f.shouldFailOver(ctx, err) {
		var zero T
		return zero, callInfo(f.primary, false, stats), err
	}

	slog.Warn(
		"authority regional failover",
		"operation", operation,
		"from_region", f.primary.Region(),
		"to_region", f.dr.Region(),
		"error", err.Error(),
	)

	result, drErr := fn(ctx, f.dr)
	if drErr == nil {
		return result, callInfo(f.dr, true, stats), nil
	}

	var zero T
	if !apperrors.Is(drErr, apperrors.ErrUnavailable) {
		// The DR region answered definitively; its answer stands.
		return zero, callInfo(f.dr, true, stats), drErr
	}

	return zero, callInfo(f.dr, true, stats), apperrors.Wrapf(
		authorityDomain.ErrAuthorityUnavailable,
		"all regions exhausted (primary: %s, dr: %s)",
		err, drErr,
	)
}

// shouldFailOver reports whether a primary failure is worth sending to the DR
// region. Definitive responses stand, caller cancellation propagates, and an
// expired caller deadline would doom the DR call before it starts.
func (f *FailoverAdapter) shouldFailOver(ctx context.Context, err error) bool {
	if f.dr == nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return apperrors.Is(err, apperrors.ErrUnavailable)
}

func callInfo(client Client, degraded bool, stats *callStats) authorityDomain.CallInfo {
	return authorityDomain.CallInfo{
		Region:   client.Region(),
		Degraded: degraded,
		Attempts: stats.attempts,
	}
}

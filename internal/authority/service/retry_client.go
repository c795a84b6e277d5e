package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// RetryClient bounds every authority call with a per-attempt timeout and
// retries transient failures with exponential backoff. Definitive responses
// and unavailability decisions pass through immediately. An optional rate
// limiter throttles attempts so retry storms cannot exceed the authority's
// request quota.
type RetryClient struct {
	client      Client
	callTimeout time.Duration
	maxAttempts uint
	backoffBase time.Duration
	limiter     *rate.Limiter
}

// NewRetryClient creates a RetryClient. maxAttempts counts the initial attempt,
// so maxAttempts=3 means one call plus two retries. ratePerSec of zero disables
// client-side rate limiting.
func NewRetryClient(
	client Client,
	callTimeout time.Duration,
	maxAttempts uint,
	backoffBase time.Duration,
	ratePerSec int,
) *RetryClient {
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	}

	return &RetryClient{
		client:      client,
		callTimeout: callTimeout,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		limiter:     limiter,
	}
}

// Region identifies the region this client talks to.
func (r *RetryClient) Region() string {
	return r.client.Region()
}

// WrapKey calls the underlying client under the retry policy.
func (r *RetryClient) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, error) {
	var envelope authorityDomain.DataKeyEnvelope
	err := r.do(ctx, "wrap_key", func(ctx context.Context) error {
		var callErr error
		envelope, callErr = r.client.WrapKey(ctx, keyID)
		return callErr
	})
	return envelope, err
}

// UnwrapKey calls the underlying client under the retry policy.
func (r *RetryClient) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, error) {
	var plaintext []byte
	err := r.do(ctx, "unwrap_key", func(ctx context.Context) error {
		var callErr error
		plaintext, callErr = r.client.UnwrapKey(ctx, envelope)
		return callErr
	})
	return plaintext, err
}

// RotateKey calls the underlying client under the retry policy.
func (r *RetryClient) RotateKey(ctx context.Context, keyID string) (uint, error) {
	var newVersion uint
	err := r.do(ctx, "rotate_key", func(ctx context.Context) error {
		var callErr error
		newVersion, callErr = r.client.RotateKey(ctx, keyID)
		return callErr
	})
	return newVersion, err
}

// DescribeKey calls the underlying client under the retry policy.
func (r *RetryClient) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, error) {
	var metadata authorityDomain.KeyMetadata
	err := r.do(ctx, "describe_key", func(ctx context.Context) error {
		var callErr error
		metadata, callErr = r.client.DescribeKey(ctx, keyID)
		return callErr
	})
	return metadata, err
}

// EnableRotation calls the underlying client under the retry policy.
func (r *RetryClient) EnableRotation(ctx context.Context, keyID string) error {
	return r.do(ctx, "enable_rotation", func(ctx context.Context) error {
		return r.client.EnableRotation(ctx, keyID)
	})
}

func (r *RetryClient) do(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context) error,
) error {
	attempt := func() error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		recordAttempt(ctx)

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if !apperrors.Is(err, authorityDomain.ErrTransientAuthority) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.backoffBase * 2
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		slog.Warn(
			"authority call retry",
			"operation", operation,
			"region", r.client.Region(),
			"next_attempt_in", next.String(),
			"error", err.Error(),
		)
	}

	return backoff.RetryNotify(
		attempt,
		backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(r.maxAttempts-1)),
		notify,
	)
}

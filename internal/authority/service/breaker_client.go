package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// BreakerState is the circuit breaker state for one region's client.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerClient is a circuit breaker around a region's client. After a run of
// consecutive unavailability failures it opens and fails calls fast with
// ErrAuthorityUnavailable, sparing the authority while it recovers. Once the
// cool-down elapses a single trial call is admitted; its outcome decides
// whether the breaker closes or reopens.
//
// Only unavailability-class failures count toward opening: a definitive
// response such as an unknown key means the authority is healthy and resets
// the failure streak.
type BreakerClient struct {
	client    Client
	threshold uint
	coolDown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures uint
	openedAt time.Time
	trialing bool
}

// NewBreakerClient creates a BreakerClient with the given consecutive-failure
// threshold and cool-down period.
func NewBreakerClient(client Client, threshold uint, coolDown time.Duration) *BreakerClient {
	if threshold == 0 {
		threshold = 1
	}
	return &BreakerClient{
		client:    client,
		threshold: threshold,
		coolDown:  coolDown,
		now:       time.Now,
	}
}

// State returns the current breaker state.
func (b *BreakerClient) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Region identifies the region this client talks to.
func (b *BreakerClient) Region() string {
	return b.client.Region()
}

// WrapKey calls the underlying client if the breaker admits the call.
func (b *BreakerClient) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, error) {
	var envelope authorityDomain.DataKeyEnvelope
	err := b.do(ctx, func(ctx context.Context) error {
		var callErr error
		envelope, callErr = b.client.WrapKey(ctx, keyID)
		return callErr
	})
	return envelope, err
}

// UnwrapKey calls the underlying client if the breaker admits the call.
func (b *BreakerClient) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, error) {
	var plaintext []byte
	err := b.do(ctx, func(ctx context.Context) error {
		var callErr error
		plaintext, callErr = b.client.UnwrapKey(ctx, envelope)
		return callErr
	})
	return plaintext, err
}

// RotateKey calls the underlying client if the breaker admits the call.
func (b *BreakerClient) RotateKey(ctx context.Context, keyID string) (uint, error) {
	var newVersion uint
	err := b.do(ctx, func(ctx context.Context) error {
		var callErr error
		newVersion, callErr = b.client.RotateKey(ctx, keyID)
		return callErr
	})
	return newVersion, err
}

// DescribeKey calls the underlying client if the breaker admits the call.
func (b *BreakerClient) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, error) {
	var metadata authorityDomain.KeyMetadata
	err := b.do(ctx, func(ctx context.Context) error {
		var callErr error
		metadata, callErr = b.client.DescribeKey(ctx, keyID)
		return callErr
	})
	return metadata, err
}

// EnableRotation calls the underlying client if the breaker admits the call.
func (b *BreakerClient) EnableRotation(ctx context.Context, keyID string) error {
	return b.do(ctx, func(ctx context.Context) error {
		return b.client.EnableRotation(ctx, keyID)
	})
}

func (b *BreakerClient) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// allow decides whether a call may go through in the current state.
func (b *BreakerClient) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.coolDown {
			return apperrors.Wrapf(
				authorityDomain.ErrAuthorityUnavailable,
				"circuit breaker open for region %s",
				b.client.Region(),
			)
		}
		b.state = BreakerHalfOpen
		b.trialing = true
		slog.Info("circuit breaker half-open", "region", b.client.Region())
		return nil
	case BreakerHalfOpen:
		if b.trialing {
			return apperrors.Wrapf(
				authorityDomain.ErrAuthorityUnavailable,
				"circuit breaker trial in flight for region %s",
				b.client.Region(),
			)
		}
		b.trialing = true
		return nil
	default:
		return nil
	}
}

// record feeds a call outcome back into the state machine.
func (b *BreakerClient) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	countable := err != nil && apperrors.Is(err, apperrors.ErrUnavailable)

	switch b.state {
	case BreakerClosed:
		if !countable {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.threshold {
			b.state = BreakerOpen
			b.openedAt = b.now()
			slog.Warn(
				"circuit breaker opened",
				"region", b.client.Region(),
				"consecutive_failures", b.failures,
			)
		}
	case BreakerHalfOpen:
		b.trialing = false
		switch {
		case countable:
			b.state = BreakerOpen
			b.openedAt = b.now()
			slog.Warn("circuit breaker reopened", "region", b.client.Region())
		case err != nil && errors.Is(err, context.Canceled):
			// Trial was inconclusive; reopen without restarting the cool-down
			// so the next call can trial immediately.
			b.state = BreakerOpen
		default:
			b.state = BreakerClosed
			b.failures = 0
			slog.Info("circuit breaker closed", "region", b.client.Region())
		}
	}
}

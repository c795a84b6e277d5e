package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/envelope/service"
	"github.com/allisson/keyvault/internal/envelope/service/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func failOpenTestEnvelope() *authorityDomain.DataKeyEnvelope {
	now := time.Now().UTC()
	return &authorityDomain.DataKeyEnvelope{
		KeyID:                "key-1",
		KeyVersion:           1,
		WrappedKeyMaterial:   []byte("wrapped-key-material"),
		PlaintextKeyMaterial: []byte("plaintext-key-material-32-bytes!"),
		CreatedAt:            now,
		ExpiresAt:            now.Add(time.Hour),
	}
}

func TestFailOpenCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PassesThroughHit", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		envelope := failOpenTestEnvelope()
		mockInner.On("Get", ctx, "key-1", uint(1)).Return(envelope, true, nil)
		mockMetrics.On("RecordOperation", ctx, "envelope_cache", "get", "hit").Return()

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, envelope, cached)
		mockInner.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Success_PassesThroughMiss", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		mockInner.On("Get", ctx, "key-1", uint(1)).Return(nil, false, nil)
		mockMetrics.On("RecordOperation", ctx, "envelope_cache", "get", "miss").Return()

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, cached)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Success_BackendErrorBecomesMiss", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		mockInner.On("Get", ctx, "key-1", uint(1)).Return(nil, false, errors.New("connection refused"))
		mockMetrics.On("RecordOperation", ctx, "envelope_cache", "get", "error").Return()

		cached, found, err := cache.Get(ctx, "key-1", 1)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, cached)
		mockMetrics.AssertExpectations(t)
	})
}

func TestFailOpenCache_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PassesThrough", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		envelope := failOpenTestEnvelope()
		mockInner.On("Put", ctx, envelope, 10*time.Minute).Return(nil)

		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))
		mockInner.AssertExpectations(t)
		mockMetrics.AssertNotCalled(t, "RecordOperation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_BackendErrorDropsWrite", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		envelope := failOpenTestEnvelope()
		mockInner.On("Put", ctx, envelope, 10*time.Minute).Return(errors.New("connection refused"))
		mockMetrics.On("RecordOperation", ctx, "envelope_cache", "put", "error").Return()

		require.NoError(t, cache.Put(ctx, envelope, 10*time.Minute))
		mockMetrics.AssertExpectations(t)
	})
}

func TestFailOpenCache_InvalidateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PassesThrough", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		mockInner.On("InvalidateKey", ctx, "key-1").Return(nil)

		require.NoError(t, cache.InvalidateKey(ctx, "key-1"))
		mockInner.AssertExpectations(t)
	})

	t.Run("Error_Propagates", func(t *testing.T) {
		mockInner := &mocks.MockCache{}
		mockMetrics := &mockBusinessMetrics{}
		cache := service.NewFailOpen(mockInner, nil, mockMetrics)

		// Rotation depends on the eviction, so invalidation is never
		// fail-open.
		expectedErr := errors.New("connection refused")
		mockInner.On("InvalidateKey", ctx, "key-1").Return(expectedErr)

		err := cache.InvalidateKey(ctx, "key-1")
		assert.ErrorIs(t, err, expectedErr)
		mockMetrics.AssertNotCalled(t, "RecordOperation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

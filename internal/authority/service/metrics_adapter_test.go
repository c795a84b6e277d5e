package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/authority/service/mocks"
)

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

func TestAdapterWithMetrics_WrapKey(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockNext := &mocks.MockAdapter{}
		mockMetrics := &mockBusinessMetrics{}
		adapter := NewAdapterWithMetrics(mockNext, mockMetrics)

		envelope := authorityDomain.DataKeyEnvelope{KeyID: "key-payments", KeyVersion: 1}
		info := authorityDomain.CallInfo{Region: "us-east-1", Attempts: 1}

		mockNext.On("WrapKey", ctx, "key-payments").Return(envelope, info, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "authority", "wrap_key", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "authority", "wrap_key", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, resultInfo, err := adapter.WrapKey(ctx, "key-payments")

		assert.NoError(t, err)
		assert.Equal(t, envelope, result)
		assert.Equal(t, info, resultInfo)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		mockNext := &mocks.MockAdapter{}
		mockMetrics := &mockBusinessMetrics{}
		adapter := NewAdapterWithMetrics(mockNext, mockMetrics)

		info := authorityDomain.CallInfo{Region: "us-east-1", Attempts: 3}

		mockNext.On("WrapKey", ctx, "key-payments").
			Return(authorityDomain.DataKeyEnvelope{}, info, authorityDomain.ErrAuthorityUnavailable).
			Once()
		mockMetrics.On("RecordOperation", ctx, "authority", "wrap_key", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "authority", "wrap_key", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		_, _, err := adapter.WrapKey(ctx, "key-payments")

		assert.True(t, errors.Is(err, authorityDomain.ErrAuthorityUnavailable))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("DegradedCallCountsFailover", func(t *testing.T) {
		mockNext := &mocks.MockAdapter{}
		mockMetrics := &mockBusinessMetrics{}
		adapter := NewAdapterWithMetrics(mockNext, mockMetrics)

		envelope := authorityDomain.DataKeyEnvelope{KeyID: "key-payments", KeyVersion: 2}
		info := authorityDomain.CallInfo{Region: "us-west-2", Degraded: true, Attempts: 4}

		mockNext.On("WrapKey", ctx, "key-payments").Return(envelope, info, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "authority", "wrap_key", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "authority", "wrap_key", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
		mockMetrics.On("RecordOperation", ctx, "authority", "failover", "success").Return().Once()

		_, resultInfo, err := adapter.WrapKey(ctx, "key-payments")

		assert.NoError(t, err)
		assert.True(t, resultInfo.Degraded)
		mockMetrics.AssertExpectations(t)
	})
}

func TestAdapterWithMetrics_UnwrapKey(t *testing.T) {
	ctx := context.Background()

	mockNext := &mocks.MockAdapter{}
	mockMetrics := &mockBusinessMetrics{}
	adapter := NewAdapterWithMetrics(mockNext, mockMetrics)

	envelope := &authorityDomain.DataKeyEnvelope{KeyID: "key-payments", KeyVersion: 1}
	info := authorityDomain.CallInfo{Region: "us-east-1", Attempts: 1}

	mockNext.On("UnwrapKey", ctx, envelope).Return([]byte("data-key"), info, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "authority", "unwrap_key", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "authority", "unwrap_key", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	plaintext, _, err := adapter.UnwrapKey(ctx, envelope)

	assert.NoError(t, err)
	assert.Equal(t, []byte("data-key"), plaintext)
	mockNext.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestAdapterWithMetrics_RotateKey(t *testing.T) {
	ctx := context.Background()

	mockNext := &mocks.MockAdapter{}
	mockMetrics := &mockBusinessMetrics{}
	adapter := NewAdapterWithMetrics(mockNext, mockMetrics)

	info := authorityDomain.CallInfo{Region: "us-east-1", Attempts: 1}

	mockNext.On("RotateKey", ctx, "key-payments").Return(uint(3), info, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "authority", "rotate_key", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "authority", "rotate_key", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	version, _, err := adapter.RotateKey(ctx, "key-payments")

	assert.NoError(t, err)
	assert.Equal(t, uint(3), version)
	mockMetrics.AssertExpectations(t)
}

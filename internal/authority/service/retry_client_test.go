package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/authority/service/mocks"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

func TestRetryClient_WrapKey(t *testing.T) {
	envelope := authorityDomain.DataKeyEnvelope{KeyID: "payments", KeyVersion: 1}

	t.Run("Success_FirstAttempt", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("WrapKey", mock.Anything, "payments").Return(envelope, nil).Once()

		got, err := retryClient.WrapKey(context.Background(), "payments")
		require.NoError(t, err)
		assert.Equal(t, envelope, got)
		mockClient.AssertExpectations(t)
	})

	t.Run("Success_AfterTransientFailures", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("Region").Return("us-east-1")
		mockClient.On("WrapKey", mock.Anything, "payments").
			Return(authorityDomain.DataKeyEnvelope{}, authorityDomain.ErrTransientAuthority).
			Twice()
		mockClient.On("WrapKey", mock.Anything, "payments").Return(envelope, nil).Once()

		ctx, stats := withCallStats(context.Background())
		got, err := retryClient.WrapKey(ctx, "payments")
		require.NoError(t, err)
		assert.Equal(t, envelope, got)
		assert.Equal(t, 3, stats.attempts)
		mockClient.AssertExpectations(t)
	})

	t.Run("Error_DefinitiveNotRetried", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("WrapKey", mock.Anything, "payments").
			Return(authorityDomain.DataKeyEnvelope{}, authorityDomain.ErrKeyNotFound).
			Once()

		_, err := retryClient.WrapKey(context.Background(), "payments")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, authorityDomain.ErrKeyNotFound))
		mockClient.AssertNumberOfCalls(t, "WrapKey", 1)
	})

	t.Run("Error_AttemptsExhausted", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("Region").Return("us-east-1")
		mockClient.On("WrapKey", mock.Anything, "payments").
			Return(authorityDomain.DataKeyEnvelope{}, authorityDomain.ErrTransientAuthority)

		ctx, stats := withCallStats(context.Background())
		_, err := retryClient.WrapKey(ctx, "payments")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, authorityDomain.ErrTransientAuthority))
		assert.Equal(t, 3, stats.attempts)
		mockClient.AssertNumberOfCalls(t, "WrapKey", 3)
	})
}

func TestRetryClient_RotateKey(t *testing.T) {
	t.Run("Success_AfterTransientFailure", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("Region").Return("us-east-1")
		mockClient.On("RotateKey", mock.Anything, "payments").
			Return(uint(0), authorityDomain.ErrTransientAuthority).
			Once()
		mockClient.On("RotateKey", mock.Anything, "payments").Return(uint(2), nil).Once()

		newVersion, err := retryClient.RotateKey(context.Background(), "payments")
		require.NoError(t, err)
		assert.Equal(t, uint(2), newVersion)
		mockClient.AssertExpectations(t)
	})
}

func TestRetryClient_EnableRotation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := &mocks.MockClient{}
		retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

		mockClient.On("EnableRotation", mock.Anything, "payments").Return(nil).Once()

		require.NoError(t, retryClient.EnableRotation(context.Background(), "payments"))
		mockClient.AssertExpectations(t)
	})
}

func TestRetryClient_ContextCancellation(t *testing.T) {
	mockClient := &mocks.MockClient{}
	retryClient := NewRetryClient(mockClient, time.Second, 3, time.Millisecond, 0)

	mockClient.On("Region").Return("us-east-1")
	mockClient.On("UnwrapKey", mock.Anything, mock.Anything).
		Return(nil, authorityDomain.ErrTransientAuthority)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	envelope := &authorityDomain.DataKeyEnvelope{KeyID: "payments"}
	_, err := retryClient.UnwrapKey(ctx, envelope)
	require.Error(t, err)
	// A canceled context stops the retry loop instead of burning attempts.
	assert.LessOrEqual(t, len(mockClient.Calls), 2)
}

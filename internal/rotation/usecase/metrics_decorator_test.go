package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	"github.com/allisson/keyvault/internal/rotation/usecase"
	usecaseMocks "github.com/allisson/keyvault/internal/rotation/usecase/mocks"
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

func metricsTestDescriptor(alias string, version uint) *rotationDomain.KeyDescriptor {
	now := time.Now().UTC()
	return &rotationDomain.KeyDescriptor{
		ID:                       uuid.Must(uuid.NewV7()),
		KeyID:                    "key-" + alias,
		AliasName:                alias,
		RegionPrimary:            "us-east-1",
		Version:                  version,
		State:                    rotationDomain.KeyStateActive,
		CreatedAt:                now,
		NextRegularRotationAt:    now.Add(90 * 24 * time.Hour),
		NextComplianceRotationAt: now.Add(365 * 24 * time.Hour),
	}
}

func TestKeyUseCaseWithMetrics_Create(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Create_Success", func(t *testing.T) {
		expectedDescriptor := metricsTestDescriptor("payments", 1)

		mockNext.On("Create", ctx, "payments", "us-east-1", "us-west-2").
			Return(expectedDescriptor, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_create", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_create", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := uc.Create(ctx, "payments", "us-east-1", "us-west-2")

		assert.NoError(t, err)
		assert.Equal(t, expectedDescriptor, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Create_Error", func(t *testing.T) {
		expectedErr := errors.New("create failed")

		mockNext.On("Create", ctx, "billing", "us-east-1", "").
			Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_create", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_create", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := uc.Create(ctx, "billing", "us-east-1", "")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestKeyUseCaseWithMetrics_Rotate(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Rotate_Success", func(t *testing.T) {
		expectedDescriptor := metricsTestDescriptor("payments", 2)

		mockNext.On("Rotate", ctx, "payments").Return(expectedDescriptor, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_rotate", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_rotate", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := uc.Rotate(ctx, "payments")

		assert.NoError(t, err)
		assert.Equal(t, expectedDescriptor, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Rotate_Error", func(t *testing.T) {
		expectedErr := errors.New("rotation failed")

		mockNext.On("Rotate", ctx, "billing").Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_rotate", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_rotate", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := uc.Rotate(ctx, "billing")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestKeyUseCaseWithMetrics_Describe(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Describe_Success", func(t *testing.T) {
		expectedDescriptors := []*rotationDomain.KeyDescriptor{
			metricsTestDescriptor("payments", 2),
			metricsTestDescriptor("payments", 1),
		}

		mockNext.On("Describe", ctx, "payments").Return(expectedDescriptors, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_describe", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_describe", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := uc.Describe(ctx, "payments")

		assert.NoError(t, err)
		assert.Equal(t, expectedDescriptors, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Describe_Error", func(t *testing.T) {
		expectedErr := errors.New("describe failed")

		mockNext.On("Describe", ctx, "billing").Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_describe", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_describe", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := uc.Describe(ctx, "billing")

		assert.Error(t, err)
		assert.Nil(t, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestKeyUseCaseWithMetrics_List(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("List_Success", func(t *testing.T) {
		expectedDescriptors := []*rotationDomain.KeyDescriptor{
			metricsTestDescriptor("billing", 1),
			metricsTestDescriptor("payments", 1),
		}

		mockNext.On("List", ctx, 0, 50).Return(expectedDescriptors, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_list", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_list", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := uc.List(ctx, 0, 50)

		assert.NoError(t, err)
		assert.Equal(t, expectedDescriptors, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("List_Error", func(t *testing.T) {
		expectedErr := errors.New("list failed")

		mockNext.On("List", ctx, 10, 50).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_list", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_list", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := uc.List(ctx, 10, 50)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestKeyUseCaseWithMetrics_Reset(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Reset_Success", func(t *testing.T) {
		expectedDescriptor := metricsTestDescriptor("payments", 3)

		mockNext.On("Reset", ctx, "payments").Return(expectedDescriptor, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_reset", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_reset", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := uc.Reset(ctx, "payments")

		assert.NoError(t, err)
		assert.Equal(t, expectedDescriptor, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Reset_Error", func(t *testing.T) {
		expectedErr := errors.New("reset failed")

		mockNext.On("Reset", ctx, "billing").Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "key_reset", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "key_reset", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := uc.Reset(ctx, "billing")

		assert.Error(t, err)
		assert.Nil(t, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

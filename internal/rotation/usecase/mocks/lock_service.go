package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MockLockService is a mock implementation of LockService for testing.
type MockLockService struct {
	mock.Mock
}

// Acquire mocks the Acquire method of LockService.
func (m *MockLockService) Acquire(
	ctx context.Context,
	keyID, holderID string,
	lease time.Duration,
) (*rotationDomain.RotationLock, error) {
	args := m.Called(ctx, keyID, holderID, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationLock), args.Error(1)
}

// Release mocks the Release method of LockService.
func (m *MockLockService) Release(ctx context.Context, keyID, holderID string) error {
	args := m.Called(ctx, keyID, holderID)
	return args.Error(0)
}

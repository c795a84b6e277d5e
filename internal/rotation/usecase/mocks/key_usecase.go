package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method of KeyUseCase.
func (m *MockKeyUseCase) Create(
	ctx context.Context,
	aliasName, regionPrimary, regionDR string,
) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName, regionPrimary, regionDR)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

// Rotate mocks the Rotate method of KeyUseCase.
func (m *MockKeyUseCase) Rotate(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

// Describe mocks the Describe method of KeyUseCase.
func (m *MockKeyUseCase) Describe(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.KeyDescriptor), args.Error(1)
}

// List mocks the List method of KeyUseCase.
func (m *MockKeyUseCase) List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.KeyDescriptor), args.Error(1)
}

// Reset mocks the Reset method of KeyUseCase.
func (m *MockKeyUseCase) Reset(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

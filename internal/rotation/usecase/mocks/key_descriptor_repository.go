// Package mocks provides mock implementations for testing key lifecycle
// use cases.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MockKeyDescriptorRepository is a mock implementation of
// KeyDescriptorRepository for testing.
type MockKeyDescriptorRepository struct {
	mock.Mock
}

// Create mocks the Create method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) Create(ctx context.Context, descriptor *rotationDomain.KeyDescriptor) error {
	args := m.Called(ctx, descriptor)
	return args.Error(0)
}

// Update mocks the Update method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) Update(ctx context.Context, descriptor *rotationDomain.KeyDescriptor) error {
	args := m.Called(ctx, descriptor)
	return args.Error(0)
}

// GetEncryptable mocks the GetEncryptable method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) GetEncryptable(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

// GetByAliasAndVersion mocks the GetByAliasAndVersion method of
// KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) GetByAliasAndVersion(
	ctx context.Context,
	aliasName string,
	version uint,
) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

// GetLatest mocks the GetLatest method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) GetLatest(ctx context.Context, aliasName string) (*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyDescriptor), args.Error(1)
}

// ListByAlias mocks the ListByAlias method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) ListByAlias(ctx context.Context, aliasName string) ([]*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, aliasName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.KeyDescriptor), args.Error(1)
}

// List mocks the List method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) List(ctx context.Context, offset, limit int) ([]*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.KeyDescriptor), args.Error(1)
}

// ListDue mocks the ListDue method of KeyDescriptorRepository.
func (m *MockKeyDescriptorRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*rotationDomain.KeyDescriptor, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.KeyDescriptor), args.Error(1)
}

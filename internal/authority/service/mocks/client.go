// Package mocks provides mock implementations for testing the authority
// client stack.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
)

// MockClient is a mock implementation of the per-region authority Client.
type MockClient struct {
	mock.Mock
}

// WrapKey mocks the WrapKey method of Client.
func (m *MockClient) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(authorityDomain.DataKeyEnvelope), args.Error(1)
}

// UnwrapKey mocks the UnwrapKey method of Client.
func (m *MockClient) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, error) {
	args := m.Called(ctx, envelope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// RotateKey mocks the RotateKey method of Client.
func (m *MockClient) RotateKey(ctx context.Context, keyID string) (uint, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(uint), args.Error(1)
}

// DescribeKey mocks the DescribeKey method of Client.
func (m *MockClient) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(authorityDomain.KeyMetadata), args.Error(1)
}

// EnableRotation mocks the EnableRotation method of Client.
func (m *MockClient) EnableRotation(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

// Region mocks the Region method of Client.
func (m *MockClient) Region() string {
	args := m.Called()
	return args.String(0)
}

// MockAdapter is a mock implementation of the multi-region authority Adapter.
type MockAdapter struct {
	mock.Mock
}

// WrapKey mocks the WrapKey method of Adapter.
func (m *MockAdapter) WrapKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.DataKeyEnvelope, authorityDomain.CallInfo, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(authorityDomain.DataKeyEnvelope),
		args.Get(1).(authorityDomain.CallInfo),
		args.Error(2)
}

// UnwrapKey mocks the UnwrapKey method of Adapter.
func (m *MockAdapter) UnwrapKey(
	ctx context.Context,
	envelope *authorityDomain.DataKeyEnvelope,
) ([]byte, authorityDomain.CallInfo, error) {
	args := m.Called(ctx, envelope)
	if args.Get(0) == nil {
		return nil, args.Get(1).(authorityDomain.CallInfo), args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(authorityDomain.CallInfo), args.Error(2)
}

// RotateKey mocks the RotateKey method of Adapter.
func (m *MockAdapter) RotateKey(
	ctx context.Context,
	keyID string,
) (uint, authorityDomain.CallInfo, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(uint), args.Get(1).(authorityDomain.CallInfo), args.Error(2)
}

// DescribeKey mocks the DescribeKey method of Adapter.
func (m *MockAdapter) DescribeKey(
	ctx context.Context,
	keyID string,
) (authorityDomain.KeyMetadata, authorityDomain.CallInfo, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(authorityDomain.KeyMetadata),
		args.Get(1).(authorityDomain.CallInfo),
		args.Error(2)
}

// EnableRotation mocks the EnableRotation method of Adapter.
func (m *MockAdapter) EnableRotation(
	ctx context.Context,
	keyID string,
) (authorityDomain.CallInfo, error) {
	args := m.Called(ctx, keyID)
	return args.Get(0).(authorityDomain.CallInfo), args.Error(1)
}

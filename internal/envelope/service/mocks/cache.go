// Package mocks provides hand-written testify mocks for the envelope cache
// interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
)

// MockCache is a mock implementation of Cache for testing.
type MockCache struct {
	mock.Mock
}

// Get mocks the Get method of Cache.
func (m *MockCache) Get(ctx context.Context, keyID string, version uint) (*authorityDomain.DataKeyEnvelope, bool, error) {
	args := m.Called(ctx, keyID, version)

	var envelope *authorityDomain.DataKeyEnvelope
	if args.Get(0) != nil {
		envelope = args.Get(0).(*authorityDomain.DataKeyEnvelope)
	}
	return envelope, args.Bool(1), args.Error(2)
}

// Put mocks the Put method of Cache.
func (m *MockCache) Put(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope, ttl time.Duration) error {
	args := m.Called(ctx, envelope, ttl)
	return args.Error(0)
}

// InvalidateKey mocks the InvalidateKey method of Cache.
func (m *MockCache) InvalidateKey(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

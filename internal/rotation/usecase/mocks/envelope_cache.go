package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEnvelopeCache is a mock implementation of EnvelopeCache for testing.
type MockEnvelopeCache struct {
	mock.Mock
}

// InvalidateKey mocks the InvalidateKey method of EnvelopeCache.
func (m *MockEnvelopeCache) InvalidateKey(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// MockEnvelopeRepository is a mock implementation of EnvelopeRepository for
// testing.
type MockEnvelopeRepository struct {
	mock.Mock
}

// Create mocks the Create method of EnvelopeRepository.
func (m *MockEnvelopeRepository) Create(ctx context.Context, envelope *rotationDomain.KeyEnvelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

// Get mocks the Get method of EnvelopeRepository.
func (m *MockEnvelopeRepository) Get(ctx context.Context, keyID string, version uint) (*rotationDomain.KeyEnvelope, error) {
	args := m.Called(ctx, keyID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.KeyEnvelope), args.Error(1)
}

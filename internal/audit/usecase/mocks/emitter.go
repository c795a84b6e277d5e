package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// MockEmitter is a mock implementation of the audit Emitter for testing.
type MockEmitter struct {
	mock.Mock
}

// Emit mocks the Emit method of Emitter.
func (m *MockEmitter) Emit(ctx context.Context, record *auditDomain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Close mocks the Close method of Emitter.
func (m *MockEmitter) Close() error {
	args := m.Called()
	return args.Error(0)
}

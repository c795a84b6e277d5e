package mocks

import (
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// MockSigner is a mock implementation of the audit Signer for testing.
type MockSigner struct {
	mock.Mock
}

// Sign mocks the Sign method of Signer.
func (m *MockSigner) Sign(record *auditDomain.AuditRecord) ([]byte, error) {
	args := m.Called(record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Verify mocks the Verify method of Signer.
func (m *MockSigner) Verify(record *auditDomain.AuditRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// MockAuditRecorder is a mock implementation of AuditRecorder for testing.
type MockAuditRecorder struct {
	mock.Mock
}

// Record mocks the Record method of AuditRecorder.
func (m *MockAuditRecorder) Record(
	ctx context.Context,
	operation string,
	keyID string,
	keyVersion uint,
	outcome auditDomain.Outcome,
	actor auditDomain.ActorContext,
) error {
	args := m.Called(ctx, operation, keyID, keyVersion, outcome, actor)
	return args.Error(0)
}

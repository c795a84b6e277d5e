package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
	auditUseCase "github.com/allisson/keyvault/internal/audit/usecase"
)

// MockAuditUseCase is a mock implementation of AuditUseCase for testing.
type MockAuditUseCase struct {
	mock.Mock
}

// Record mocks the Record method of AuditUseCase.
func (m *MockAuditUseCase) Record(
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

// List mocks the List method of AuditUseCase.
func (m *MockAuditUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditRecord, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditRecord), args.Error(1)
}

// Verify mocks the Verify method of AuditUseCase.
func (m *MockAuditUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo time.Time,
) (*auditUseCase.VerificationReport, error) {
	args := m.Called(ctx, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditUseCase.VerificationReport), args.Error(1)
}

// Clean mocks the Clean method of AuditUseCase.
func (m *MockAuditUseCase) Clean(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

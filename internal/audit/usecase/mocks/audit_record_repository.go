// Package mocks provides hand-written testify mocks for audit use case
// dependencies and for the use case itself.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/keyvault/internal/audit/domain"
)

// MockAuditRecordRepository is a mock implementation of
// AuditRecordRepository for testing.
type MockAuditRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of AuditRecordRepository.
func (m *MockAuditRecordRepository) Create(
	ctx context.Context,
	record *auditDomain.AuditRecord,
) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// List mocks the List method of AuditRecordRepository.
func (m *MockAuditRecordRepository) List(
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

// DeleteOlderThan mocks the DeleteOlderThan method of AuditRecordRepository.
func (m *MockAuditRecordRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// Package mocks provides mock implementations for testing transactional code.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock implementation of TxManager for testing.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method of TxManager. When the configured return is
// nil the callback runs with the same context, mirroring a committed
// transaction; a non-nil return simulates a transaction that failed before
// the callback ran.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

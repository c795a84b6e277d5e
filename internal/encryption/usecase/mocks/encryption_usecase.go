// Package mocks provides hand-written testify mocks for the payload
// encryption interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
)

// MockEncryptionUseCase is a mock implementation of EncryptionUseCase for testing.
type MockEncryptionUseCase struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method of EncryptionUseCase.
func (m *MockEncryptionUseCase) Encrypt(
	ctx context.Context,
	aliasName string,
	plaintext []byte,
) (*encryptionDomain.EncryptedBlob, error) {
	args := m.Called(ctx, aliasName, plaintext)

	var blob *encryptionDomain.EncryptedBlob
	if args.Get(0) != nil {
		blob = args.Get(0).(*encryptionDomain.EncryptedBlob)
	}
	return blob, args.Error(1)
}

// Decrypt mocks the Decrypt method of EncryptionUseCase.
func (m *MockEncryptionUseCase) Decrypt(ctx context.Context, content string) ([]byte, error) {
	args := m.Called(ctx, content)

	var plaintext []byte
	if args.Get(0) != nil {
		plaintext = args.Get(0).([]byte)
	}
	return plaintext, args.Error(1)
}

// Reencrypt mocks the Reencrypt method of EncryptionUseCase.
func (m *MockEncryptionUseCase) Reencrypt(
	ctx context.Context,
	content string,
) (*encryptionDomain.EncryptedBlob, error) {
	args := m.Called(ctx, content)

	var blob *encryptionDomain.EncryptedBlob
	if args.Get(0) != nil {
		blob = args.Get(0).(*encryptionDomain.EncryptedBlob)
	}
	return blob, args.Error(1)
}

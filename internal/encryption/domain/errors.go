package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Payload encryption error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so HTTP and CLI layers can classify failures without string matching.
var (
	// ErrInvalidBlobFormat indicates the encrypted blob is not three
	// colon-separated parts.
	ErrInvalidBlobFormat = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted blob format")

	// ErrEmptyBlobAlias indicates the encrypted blob carries no alias name.
	ErrEmptyBlobAlias = errors.Wrap(errors.ErrInvalidInput, "encrypted blob alias is empty")

	// ErrInvalidBlobVersion indicates the version part cannot be parsed.
	ErrInvalidBlobVersion = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted blob version")

	// ErrInvalidBlobBase64 indicates the ciphertext part is not valid base64.
	ErrInvalidBlobBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted blob base64")

	// ErrCiphertextTooShort indicates the decoded ciphertext is shorter than
	// the nonce that must prefix it.
	ErrCiphertextTooShort = errors.Wrap(errors.ErrInvalidInput, "ciphertext shorter than nonce")

	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not
	// supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the data key is not 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)

package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Key lifecycle error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so callers can branch on the shared sentinels while logs keep the
// rotation-specific context.
var (
	// ErrKeyNotFound indicates no descriptor exists for the requested alias
	// or alias+version pair.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrKeyAlreadyExists indicates a descriptor already exists for the alias.
	ErrKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "key already exists")

	// ErrKeyState indicates the operation is not valid in the key's current
	// state, such as encrypting with a retired or rotation-failed key.
	ErrKeyState = errors.Wrap(errors.ErrConflict, "key state does not permit operation")

	// ErrLockContention indicates another holder owns the rotation lock for
	// the key. Never fatal: the other holder is doing the same work.
	ErrLockContention = errors.Wrap(errors.ErrConflict, "rotation lock held by another holder")

	// ErrLockNotHeld indicates a release found no lock owned by the caller,
	// typically because the lease expired mid-rotation.
	ErrLockNotHeld = errors.Wrap(errors.ErrConflict, "rotation lock not held")

	// ErrRotationExhausted indicates the key burned through its rotation
	// retry budget and sits in RotationFailed until an operator resets it.
	ErrRotationExhausted = errors.Wrap(errors.ErrConflict, "rotation retry attempts exhausted")

	// ErrEnvelopeNotFound indicates no wrapped data key exists for the
	// requested key version.
	ErrEnvelopeNotFound = errors.Wrap(errors.ErrNotFound, "key envelope not found")
)

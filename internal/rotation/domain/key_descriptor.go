// Package domain defines the core types for managed key lifecycle and
// rotation scheduling.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyState is the lifecycle state of one key descriptor version.
type KeyState string

const (
	// KeyStateActive is the normal serving state for the current version.
	KeyStateActive KeyState = "active"

	// KeyStatePendingRotation marks a version whose rotation deadline has
	// passed and that is queued for rotation. Still encryptable.
	KeyStatePendingRotation KeyState = "pending_rotation"

	// KeyStateRotating marks a version with a rotation in flight. Still
	// encryptable; in-flight rotations never block encryption.
	KeyStateRotating KeyState = "rotating"

	// KeyStateRetired marks a superseded version. Decrypt-only.
	KeyStateRetired KeyState = "retired"

	// KeyStateRotationFailed marks a version whose rotation exhausted its
	// retry budget. Cleared only by an operator reset.
	KeyStateRotationFailed KeyState = "rotation_failed"
)

// KeyDescriptor is one version row of a managed key. A key alias accumulates
// one row per version over its lifetime; exactly one row per alias is in an
// encryptable state at any time, and superseded rows stay behind as Retired
// so historical ciphertext remains decryptable.
type KeyDescriptor struct {
	ID            uuid.UUID
	KeyID         string // identifier of the root key at the remote authority
	AliasName     string
	RegionPrimary string
	RegionDR      string
	Version       uint
	State         KeyState
	RetryAttempts uint
	CreatedAt     time.Time
	LastRotatedAt *time.Time
	// Rotation is due when either deadline passes; a completed rotation
	// resets both from the rotation instant.
	NextRegularRotationAt    time.Time
	NextComplianceRotationAt time.Time
}

// Encryptable reports whether this version may serve new encryptions.
func (k *KeyDescriptor) Encryptable() bool {
	switch k.State {
	case KeyStateActive, KeyStatePendingRotation, KeyStateRotating:
		return true
	default:
		return false
	}
}

// RotationDue reports whether either rotation deadline has passed.
func (k *KeyDescriptor) RotationDue(now time.Time) bool {
	return !now.Before(k.NextRegularRotationAt) || !now.Before(k.NextComplianceRotationAt)
}

// RotationPolicy holds the rotation intervals for a deployment. The earliest
// resulting deadline wins.
type RotationPolicy struct {
	RegularInterval    time.Duration
	ComplianceInterval time.Duration
}

// Deadlines computes both rotation deadlines from a reference instant.
func (p RotationPolicy) Deadlines(from time.Time) (regular, compliance time.Time) {
	return from.Add(p.RegularInterval), from.Add(p.ComplianceInterval)
}

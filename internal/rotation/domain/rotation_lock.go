package domain

import (
	"time"
)

// RotationLock is the cluster-wide exclusion lease for one key's rotation.
// It lives only in the lock store; the descriptor table never carries lock
// state. The lease bounds how long a crashed holder can block rotation.
type RotationLock struct {
	KeyID      string
	HolderID   string
	AcquiredAt time.Time
	ExpiresAt  time.Time
}

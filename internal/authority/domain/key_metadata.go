package domain

import (
	"time"
)

// KeyMetadata is the authority's view of a root key, as returned by DescribeKey.
// CurrentVersion advances when the authority rotates the key; the scheduler
// compares it against the committed descriptor version to detect rotations
// that completed at the authority but were never committed locally.
type KeyMetadata struct {
	KeyID           string
	CurrentVersion  uint
	RotationEnabled bool
	CreatedAt       time.Time
	Region          string
}

// CallInfo describes how an authority call was served. Degraded is set when
// the disaster-recovery region answered after the primary was exhausted; it is
// surfaced to callers even on success so they can record the failover.
type CallInfo struct {
	Region   string
	Degraded bool
	Attempts int
}

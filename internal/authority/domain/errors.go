package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Authority error classification.
//
// The resilience stack keys its behavior off these classes: transient errors
// are absorbed by the retry policy, unavailability fails fast and is eligible
// for regional failover, and definitive responses (such as an unknown key)
// are returned to the caller untouched.
var (
	// ErrTransientAuthority indicates a network-level or timeout failure on an
	// authority call. Retried by the adapter's retry policy; never surfaced to
	// callers unless every attempt is exhausted.
	ErrTransientAuthority = errors.Wrap(errors.ErrUnavailable, "transient authority error")

	// ErrAuthorityUnavailable indicates the authority cannot be reached at all:
	// the circuit breaker is open or every region has been exhausted. Calls
	// fail fast with this error instead of queuing; callers decide whether to
	// retry under their own policy.
	ErrAuthorityUnavailable = errors.Wrap(errors.ErrUnavailable, "authority unavailable")

	// ErrKeyNotFound indicates the authority has no key for the requested
	// identifier. This is a definitive response, not a failure of the
	// authority, so it is neither retried nor failed over.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found at authority")
)

package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

var (
	// ErrAuditRecordNotFound indicates no audit record exists for the requested ID.
	ErrAuditRecordNotFound = errors.Wrap(errors.ErrNotFound, "audit record not found")

	// ErrSignatureMismatch indicates a stored audit record's signature does not
	// match its recomputed value; the record was altered after creation.
	ErrSignatureMismatch = errors.Wrap(errors.ErrInvalidInput, "audit record signature mismatch")

	// ErrAuditUnavailable indicates audit recording failed while the service is
	// configured to require audit on every operation.
	ErrAuditUnavailable = errors.Wrap(errors.ErrUnavailable, "audit recording unavailable")
)

package service

import (
	"context"
	"log/slog"
	"time"

	authorityDomain "github.com/allisson/keyvault/internal/authority/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// failOpenCache degrades cache failures instead of surfacing them. A failed
// read becomes a miss and a failed write is dropped: encryption operations
// then fall back to the database and the key authority, which are the
// sources of truth. InvalidateKey is the exception because rotation must not
// complete while stale plaintext entries may still be served, so those
// errors propagate.
type failOpenCache struct {
	inner   Cache
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// Get returns a miss when the backend fails. Hits, misses, and failures are
// counted separately so both the hit ratio and a dead cache stay visible.
func (c *failOpenCache) Get(ctx context.Context, keyID string, version uint) (*authorityDomain.DataKeyEnvelope, bool, error) {
	envelope, found, err := c.inner.Get(ctx, keyID, version)
	if err != nil {
		c.logger.Warn("envelope cache read failed, treating as miss",
			slog.String("key_id", keyID),
			slog.Uint64("key_version", uint64(version)),
			slog.Any("error", err),
		)
		c.metrics.RecordOperation(ctx, "envelope_cache", "get", "error")
		return nil, false, nil
	}

	status := "miss"
	if found {
		status = "hit"
	}
	c.metrics.RecordOperation(ctx, "envelope_cache", "get", status)

	return envelope, found, nil
}

// Put drops the entry when the backend fails. The next Get for this version
// misses and repopulates once the backend recovers.
func (c *failOpenCache) Put(ctx context.Context, envelope *authorityDomain.DataKeyEnvelope, ttl time.Duration) error {
	if err := c.inner.Put(ctx, envelope, ttl); err != nil {
		c.logger.Warn("envelope cache write failed, dropping entry",
			slog.String("key_id", envelope.KeyID),
			slog.Uint64("key_version", uint64(envelope.KeyVersion)),
			slog.Any("error", err),
		)
		c.metrics.RecordOperation(ctx, "envelope_cache", "put", "error")
		return nil
	}
	return nil
}

// InvalidateKey is never fail-open.
func (c *failOpenCache) InvalidateKey(ctx context.Context, keyID string) error {
	return c.inner.InvalidateKey(ctx, keyID)
}

// NewFailOpen wraps a Cache so backend failures on reads and writes degrade
// to misses and dropped writes rather than errors.
func NewFailOpen(inner Cache, logger *slog.Logger, m metrics.BusinessMetrics) Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &failOpenCache{
		inner:   inner,
		logger:  logger,
		metrics: m,
	}
}

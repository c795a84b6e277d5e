package app

import (
	"fmt"

	envelopeService "github.com/allisson/keyvault/internal/envelope/service"
)

// EnvelopeCache returns the data key cache: a Redis cache wrapped in the
// fail-open decorator, so a dead cache degrades reads to misses instead of
// failing payload operations. Invalidation stays fail-closed.
func (c *Container) EnvelopeCache() (envelopeService.Cache, error) {
	var err error
	c.envelopeCacheInit.Do(func() {
		c.envelopeCache, err = c.initEnvelopeCache()
		if err != nil {
			c.initErrors["envelopeCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeCache"]; exists {
		return nil, storedErr
	}
	return c.envelopeCache, nil
}

// initEnvelopeCache creates the fail-open Redis envelope cache.
func (c *Container) initEnvelopeCache() (envelopeService.Cache, error) {
	redisClient, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for envelope cache: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for envelope cache: %w", err)
	}

	inner := envelopeService.NewRedisCache(redisClient, c.config.CacheCompressionEnabled)
	return envelopeService.NewFailOpen(inner, c.Logger(), businessMetrics), nil
}

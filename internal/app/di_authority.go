package app

import (
	"fmt"

	authorityService "github.com/allisson/keyvault/internal/authority/service"
)

// KeeperOpener returns the KMS keeper opener shared by every regional client.
func (c *Container) KeeperOpener() authorityService.KeeperOpener {
	c.keeperOpenerInit.Do(func() {
		c.keeperOpener = authorityService.NewKeeperOpener()
	})
	return c.keeperOpener
}

// AuthorityAdapter returns the multi-region root-key authority adapter.
// Each regional client is wrapped in retry and circuit-breaker decorators;
// the failover adapter on top routes to the primary region first and falls
// back to the disaster-recovery region when the primary is unavailable.
func (c *Container) AuthorityAdapter() (authorityService.Adapter, error) {
	var err error
	c.authorityAdapterInit.Do(func() {
		c.authorityAdapter, err = c.initAuthorityAdapter()
		if err != nil {
			c.initErrors["authorityAdapter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authorityAdapter"]; exists {
		return nil, storedErr
	}
	return c.authorityAdapter, nil
}

// initAuthorityAdapter builds the authority client stack for both regions.
func (c *Container) initAuthorityAdapter() (authorityService.Adapter, error) {
	primary, err := c.buildRegionClient(
		c.config.AuthorityPrimaryRegion,
		c.config.AuthorityPrimaryURITemplate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build primary authority client: %w", err)
	}

	// The DR region is optional: single-region deployments leave it blank
	// and every primary failure surfaces as-is.
	var dr authorityService.Client
	if c.config.AuthorityDRRegion != "" && c.config.AuthorityDRURITemplate != "" {
		dr, err = c.buildRegionClient(
			c.config.AuthorityDRRegion,
			c.config.AuthorityDRURITemplate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build dr authority client: %w", err)
		}
	}

	adapter := authorityService.NewFailoverAdapter(primary, dr)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authority adapter: %w", err)
		}
		return authorityService.NewAdapterWithMetrics(adapter, businessMetrics), nil
	}

	return adapter, nil
}

// buildRegionClient assembles the decorator stack for one region:
// keeper client, then retry with per-call timeout and optional rate limit,
// then circuit breaker.
func (c *Container) buildRegionClient(
	region string,
	uriTemplate string,
) (authorityService.Client, error) {
	redisClient, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for authority client: %w", err)
	}

	keeper := authorityService.NewKeeperClient(
		region,
		uriTemplate,
		c.KeeperOpener(),
		redisClient,
	)

	retry := authorityService.NewRetryClient(
		keeper,
		c.config.AuthorityCallTimeout,
		uint(c.config.AuthorityMaxRetryAttempts),
		c.config.AuthorityRetryBackoff,
		c.config.AuthorityRateLimitPerSec,
	)

	breaker := authorityService.NewBreakerClient(
		retry,
		uint(c.config.BreakerFailureThreshold),
		c.config.BreakerCoolDown,
	)

	return breaker, nil
}

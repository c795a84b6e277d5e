package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
	rotationRepository "github.com/allisson/keyvault/internal/rotation/repository"
	rotationService "github.com/allisson/keyvault/internal/rotation/service"
	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// KeyDescriptorRepository returns the key descriptor repository based on the
// database driver.
func (c *Container) KeyDescriptorRepository() (rotationUseCase.KeyDescriptorRepository, error) {
	var err error
	c.keyDescriptorRepoInit.Do(func() {
		c.keyDescriptorRepo, err = c.initKeyDescriptorRepository()
		if err != nil {
			c.initErrors["keyDescriptorRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyDescriptorRepo"]; exists {
		return nil, storedErr
	}
	return c.keyDescriptorRepo, nil
}

// EnvelopeRepository returns the wrapped data key repository based on the
// database driver.
func (c *Container) EnvelopeRepository() (rotationUseCase.EnvelopeRepository, error) {
	var err error
	c.envelopeRepoInit.Do(func() {
		c.envelopeRepo, err = c.initEnvelopeRepository()
		if err != nil {
			c.initErrors["envelopeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeRepo"]; exists {
		return nil, storedErr
	}
	return c.envelopeRepo, nil
}

// LockService returns the distributed rotation lock service.
func (c *Container) LockService() (rotationUseCase.LockService, error) {
	var err error
	c.lockServiceInit.Do(func() {
		c.lockService, err = c.initLockService()
		if err != nil {
			c.initErrors["lockService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lockService"]; exists {
		return nil, storedErr
	}
	return c.lockService, nil
}

// KeyUseCase returns the key lifecycle use case.
func (c *Container) KeyUseCase() (rotationUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// RotationScheduler returns the scheduler driving due rotations, or nil when
// rotation is disabled.
func (c *Container) RotationScheduler() (*rotationUseCase.RotationScheduler, error) {
	var err error
	c.schedulerInit.Do(func() {
		c.rotationScheduler, err = c.initRotationScheduler()
		if err != nil {
			c.initErrors["rotationScheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationScheduler"]; exists {
		return nil, storedErr
	}
	return c.rotationScheduler, nil
}

// initKeyDescriptorRepository creates the key descriptor repository based on the database driver.
func (c *Container) initKeyDescriptorRepository() (rotationUseCase.KeyDescriptorRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key descriptor repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rotationRepository.NewPostgreSQLKeyDescriptorRepository(db), nil
	case "mysql":
		return rotationRepository.NewMySQLKeyDescriptorRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEnvelopeRepository creates the envelope repository based on the database driver.
func (c *Container) initEnvelopeRepository() (rotationUseCase.EnvelopeRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for envelope repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rotationRepository.NewPostgreSQLEnvelopeRepository(db), nil
	case "mysql":
		return rotationRepository.NewMySQLEnvelopeRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLockService creates the Redis-backed rotation lock service.
func (c *Container) initLockService() (rotationUseCase.LockService, error) {
	redisClient, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for lock service: %w", err)
	}
	return rotationService.NewRedisLockService(redisClient), nil
}

// initKeyUseCase creates the key lifecycle use case with all its dependencies.
// The rotation configuration is validated here so interval misconfigurations
// fail at startup instead of scheduling rotations centuries out.
func (c *Container) initKeyUseCase() (rotationUseCase.KeyUseCase, error) {
	useCaseConfig := rotationUseCase.Config{
		Policy: rotationDomain.RotationPolicy{
			RegularInterval:    c.config.RotationRegularInterval,
			ComplianceInterval: c.config.RotationComplianceInterval,
		},
		MaxRetryAttempts: uint(c.config.RotationMaxRetryAttempts),
		LockLease:        c.config.RotationLockLeaseTimeout,
		HolderID:         holderID(),
	}
	if err := useCaseConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rotation configuration: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key use case: %w", err)
	}

	descriptorRepo, err := c.KeyDescriptorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key descriptor repository for key use case: %w", err)
	}

	envelopeRepo, err := c.EnvelopeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope repository for key use case: %w", err)
	}

	lockService, err := c.LockService()
	if err != nil {
		return nil, fmt.Errorf("failed to get lock service for key use case: %w", err)
	}

	authority, err := c.AuthorityAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to get authority adapter for key use case: %w", err)
	}

	envelopeCache, err := c.EnvelopeCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope cache for key use case: %w", err)
	}

	auditRecorder, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for key use case: %w", err)
	}

	baseUseCase := rotationUseCase.NewKeyUseCase(
		useCaseConfig,
		txManager,
		descriptorRepo,
		envelopeRepo,
		lockService,
		authority,
		envelopeCache,
		auditRecorder,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return rotationUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRotationScheduler creates the rotation scheduler. Returns nil when
// rotation is disabled so callers can skip starting it.
func (c *Container) initRotationScheduler() (*rotationUseCase.RotationScheduler, error) {
	if !c.config.RotationEnabled {
		return nil, nil
	}

	descriptorRepo, err := c.KeyDescriptorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key descriptor repository for rotation scheduler: %w", err)
	}

	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for rotation scheduler: %w", err)
	}

	return rotationUseCase.NewRotationScheduler(
		rotationUseCase.SchedulerConfig{
			Interval:  c.config.RotationSchedulerInterval,
			BatchSize: c.config.RotationSchedulerBatchSize,
		},
		descriptorRepo,
		keyUseCase,
		c.Logger(),
	), nil
}

// holderID identifies this process as a rotation lock holder and audit actor.
func holderID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return uuid.Must(uuid.NewV7()).String()
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

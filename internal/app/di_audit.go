package app

import (
	"fmt"
	"strings"

	auditRepository "github.com/allisson/keyvault/internal/audit/repository"
	auditService "github.com/allisson/keyvault/internal/audit/service"
	auditUseCase "github.com/allisson/keyvault/internal/audit/usecase"
)

// AuditRecordRepository returns the audit record repository based on the
// database driver.
func (c *Container) AuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	var err error
	c.auditRecordRepoInit.Do(func() {
		c.auditRecordRepo, err = c.initAuditRecordRepository()
		if err != nil {
			c.initErrors["auditRecordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRecordRepo, nil
}

// AuditSigner returns the HMAC signer for audit records.
func (c *Container) AuditSigner() (auditService.Signer, error) {
	var err error
	c.auditSignerInit.Do(func() {
		c.auditSigner, err = c.initAuditSigner()
		if err != nil {
			c.initErrors["auditSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}

// AuditEmitter returns the streaming audit emitter, or nil when the audit
// sink is the database alone.
func (c *Container) AuditEmitter() (auditService.Emitter, error) {
	var err error
	c.auditEmitterInit.Do(func() {
		c.auditEmitter, err = c.initAuditEmitter()
		if err != nil {
			c.initErrors["auditEmitter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEmitter"]; exists {
		return nil, storedErr
	}
	return c.auditEmitter, nil
}

// AuditUseCase returns the audit record use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// initAuditRecordRepository creates the audit record repository based on the database driver.
func (c *Container) initAuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditRecordRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditSigner creates the HMAC signer from the configured secret.
func (c *Container) initAuditSigner() (auditService.Signer, error) {
	if c.config.AuditSigningSecret == "" {
		return nil, fmt.Errorf("AUDIT_SIGNING_SECRET must be set")
	}
	return auditService.NewHMACSigner([]byte(c.config.AuditSigningSecret)), nil
}

// initAuditEmitter creates the Kafka emitter when the kafka sink is
// configured. The database store is always written; the stream is additive.
func (c *Container) initAuditEmitter() (auditService.Emitter, error) {
	switch c.config.AuditSink {
	case "database":
		return nil, nil
	case "kafka":
		brokers := strings.Split(c.config.KafkaBrokers, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		return auditService.NewKafkaEmitter(brokers, c.config.KafkaTopic, c.Logger()), nil
	default:
		return nil, fmt.Errorf(
			"invalid audit sink: %s (valid options: database, kafka)",
			c.config.AuditSink,
		)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	auditRecordRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for audit use case: %w", err)
	}

	signer, err := c.AuditSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit signer for audit use case: %w", err)
	}

	emitter, err := c.AuditEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit emitter for audit use case: %w", err)
	}

	baseUseCase := auditUseCase.NewAuditUseCase(
		auditUseCase.Config{Required: c.config.AuditRequired},
		auditRecordRepo,
		signer,
		emitter,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit use case: %w", err)
		}
		return auditUseCase.NewAuditUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

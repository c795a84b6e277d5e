package app

import (
	"fmt"

	encryptionDomain "github.com/allisson/keyvault/internal/encryption/domain"
	encryptionService "github.com/allisson/keyvault/internal/encryption/service"
	encryptionUseCase "github.com/allisson/keyvault/internal/encryption/usecase"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() encryptionService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = encryptionService.NewAEADManager()
	})
	return c.aeadManager
}

// EncryptionUseCase returns the payload encryption use case.
func (c *Container) EncryptionUseCase() (encryptionUseCase.EncryptionUseCase, error) {
	var err error
	c.encryptionUseCaseInit.Do(func() {
		c.encryptionUseCase, err = c.initEncryptionUseCase()
		if err != nil {
			c.initErrors["encryptionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.encryptionUseCase, nil
}

// initEncryptionUseCase creates the payload encryption use case with all its
// dependencies.
func (c *Container) initEncryptionUseCase() (encryptionUseCase.EncryptionUseCase, error) {
	algorithm, err := parseEncryptionAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, err
	}

	descriptorRepo, err := c.KeyDescriptorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key descriptor repository for encryption use case: %w", err)
	}

	envelopeRepo, err := c.EnvelopeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope repository for encryption use case: %w", err)
	}

	envelopeCache, err := c.EnvelopeCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope cache for encryption use case: %w", err)
	}

	authority, err := c.AuthorityAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to get authority adapter for encryption use case: %w", err)
	}

	auditRecorder, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for encryption use case: %w", err)
	}

	baseUseCase := encryptionUseCase.NewEncryptionUseCase(
		encryptionUseCase.Config{
			Algorithm: algorithm,
			CacheTTL:  c.config.CacheDefaultTTL,
		},
		descriptorRepo,
		envelopeRepo,
		envelopeCache,
		authority,
		c.AEADManager(),
		auditRecorder,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for encryption use case: %w", err)
		}
		return encryptionUseCase.NewEncryptionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// parseEncryptionAlgorithm converts the configured algorithm string to the
// domain type. Returns an error for anything but the two supported AEADs.
func parseEncryptionAlgorithm(algorithmStr string) (encryptionDomain.Algorithm, error) {
	switch algorithmStr {
	case "aes-gcm":
		return encryptionDomain.AESGCM, nil
	case "chacha20-poly1305":
		return encryptionDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf(
			"invalid encryption algorithm: %s (valid options: aes-gcm, chacha20-poly1305)",
			algorithmStr,
		)
	}
}

// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	auditService "github.com/allisson/keyvault/internal/audit/service"
	auditUseCase "github.com/allisson/keyvault/internal/audit/usecase"
	authorityService "github.com/allisson/keyvault/internal/authority/service"
	"github.com/allisson/keyvault/internal/config"
	"github.com/allisson/keyvault/internal/database"
	encryptionService "github.com/allisson/keyvault/internal/encryption/service"
	encryptionUseCase "github.com/allisson/keyvault/internal/encryption/usecase"
	envelopeService "github.com/allisson/keyvault/internal/envelope/service"
	"github.com/allisson/keyvault/internal/http"
	"github.com/allisson/keyvault/internal/metrics"
	appredis "github.com/allisson/keyvault/internal/redis"
	rotationUseCase "github.com/allisson/keyvault/internal/rotation/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	redisClient *redis.Client

	// Managers
	txManager database.TxManager

	// Root-key authority
	keeperOpener     authorityService.KeeperOpener
	authorityAdapter authorityService.Adapter

	// Repositories
	keyDescriptorRepo rotationUseCase.KeyDescriptorRepository
	envelopeRepo      rotationUseCase.EnvelopeRepository
	auditRecordRepo   auditUseCase.AuditRecordRepository

	// Services
	lockService   rotationUseCase.LockService
	envelopeCache envelopeService.Cache
	aeadManager   encryptionService.AEADManager
	auditSigner   auditService.Signer
	auditEmitter  auditService.Emitter

	// Use Cases
	keyUseCase        rotationUseCase.KeyUseCase
	encryptionUseCase encryptionUseCase.EncryptionUseCase
	auditUseCase      auditUseCase.AuditUseCase

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers and Workers
	httpServer        *http.Server
	metricsServer     *http.MetricsServer
	rotationScheduler *rotationUseCase.RotationScheduler

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	redisInit             sync.Once
	txManagerInit         sync.Once
	keeperOpenerInit      sync.Once
	authorityAdapterInit  sync.Once
	keyDescriptorRepoInit sync.Once
	envelopeRepoInit      sync.Once
	auditRecordRepoInit   sync.Once
	lockServiceInit       sync.Once
	envelopeCacheInit     sync.Once
	aeadManagerInit       sync.Once
	auditSignerInit       sync.Once
	auditEmitterInit      sync.Once
	keyUseCaseInit        sync.Once
	encryptionUseCaseInit sync.Once
	auditUseCaseInit      sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	schedulerInit         sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// Redis returns the Redis client shared by the rotation lock, the envelope
// cache, and the authority metadata store.
func (c *Container) Redis() (*redis.Client, error) {
	var err error
	c.redisInit.Do(func() {
		c.redisClient, err = c.initRedis()
		if err != nil {
			c.initErrors["redis"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["redis"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// HTTPServer returns the operational HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance, or nil when
// metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush the audit stream before closing the stores it may still write to
	if c.auditEmitter != nil {
		if err := c.auditEmitter.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("audit emitter close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close connections if initialized
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initRedis creates the Redis client from the configured URL, verifying the
// connection with a ping the same way the database pool does.
func (c *Container) initRedis() (*redis.Client, error) {
	client, err := appredis.Connect(c.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initHTTPServer creates the operational HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	redisClient, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for http server: %w", err)
	}

	var metricsMiddleware gin.HandlerFunc
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		metricsMiddleware = metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	server := http.NewServer(
		http.ServerConfig{
			Host:             c.config.ServerHost,
			Port:             c.config.ServerPort,
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
		},
		db,
		redisClient,
		metricsMiddleware,
		logger,
	)

	return server, nil
}

// initMetricsServer creates the metrics HTTP server. Returns nil when
// metrics are disabled so callers can skip starting it.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
